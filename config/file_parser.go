package config

import (
	"path/filepath"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/v2"
)

type FileType string

const (
	FileTypeYAML FileType = "yaml"
	FileTypeTOML FileType = "toml"
	FileTypeJSON FileType = "json"
)

var fileTypesByExt = map[string]FileType{
	".json": FileTypeJSON,
	".toml": FileTypeTOML,
	".tml":  FileTypeTOML,
	".yaml": FileTypeYAML,
	".yml":  FileTypeYAML,
}

func (t FileType) String() string {
	return string(t)
}

func (t FileType) Valid() error {
	switch t {
	case FileTypeJSON, FileTypeYAML, FileTypeTOML:
		return nil
	}
	return errors.New("invalid config file type", errors.CategoryValidation).
		WithTextCode("INVALID_FILE_TYPE").
		WithMetadata(map[string]any{
			"file_type":   string(t),
			"valid_types": []string{string(FileTypeJSON), string(FileTypeYAML), string(FileTypeTOML)},
		})
}

// Parser returns the koanf parser for t. Unknown types fall back to json,
// which is also what inferConfigFiletype picks for unknown extensions.
func (t FileType) Parser() koanf.Parser {
	switch t {
	case FileTypeTOML:
		return toml.Parser()
	case FileTypeYAML:
		return yaml.Parser()
	default:
		return json.Parser()
	}
}

func inferConfigFiletype(path string) FileType {
	if ft, ok := fileTypesByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return ft
	}
	return FileTypeJSON
}
