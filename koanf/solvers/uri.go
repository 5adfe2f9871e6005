package solvers

import (
	"encoding/base64"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/v2"
)

type uris struct {
	fs         fs.FS
	delimiters *delimiters
}

// NewURISolver loads values indirectly, so secrets can live outside the
// configuration file:
//
//	@file://secrets/index-password -> contents of the file, trailing newlines trimmed
//	@base64://c2VjcmV0             -> decoded payload
//
// Values that fail to resolve are left unchanged.
func NewURISolver(s, e string) ConfigSolver {
	return NewURISolverWithFS(s, e, os.DirFS("."))
}

func NewURISolverWithFS(s, e string, f fs.FS) ConfigSolver {
	return &uris{
		fs: f,
		delimiters: &delimiters{
			Start: s,
			End:   e,
		},
	}
}

func (s uris) Solve(config *koanf.Koanf) *koanf.Koanf {
	keys, values := stringLeaves(config)
	for _, key := range keys {
		if content, ok := s.resolve(values[key]); ok {
			config.Set(key, content)
		}
	}
	return config
}

func (s uris) resolve(val string) (string, bool) {
	if !strings.HasPrefix(val, s.delimiters.Start) {
		return "", false
	}
	rest := val[len(s.delimiters.Start):]
	protocol, uri, ok := strings.Cut(rest, s.delimiters.End)
	if !ok {
		return "", false
	}

	var (
		content string
		err     error
	)
	switch protocol {
	case "file":
		content, err = SolveFileProtocol(s.fs, uri)
	case "base64":
		content, err = SolveBase64DecodeProtocol(uri)
	default:
		return "", false
	}
	if err != nil {
		return "", false
	}
	return content, true
}

func SolveFileProtocol(f fs.FS, uri string) (string, error) {
	b, err := fs.ReadFile(f, uri)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func SolveBase64DecodeProtocol(uri string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(uri)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
