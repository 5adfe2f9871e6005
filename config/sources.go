package config

import (
	"context"
	goerrors "errors"
	"os"
	"syscall"

	"github.com/goliatone/go-cliconf/koanf/providers/env"
	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// SourceBuilder creates a Source bound to the store that will load it.
type SourceBuilder func(*Store) (Source, error)

type SourceType string

type Source interface {
	Type() SourceType
	Priority() int
	Validate() error
	Load(context.Context, *koanf.Koanf) error
}

type Loader struct {
	order      int
	sourceType SourceType
	load       func(context.Context, *koanf.Koanf) error
}

func (l *Loader) Priority() int {
	return l.order
}

func (l *Loader) Type() SourceType {
	return l.sourceType
}

func (l *Loader) Load(ctx context.Context, k *koanf.Koanf) error {
	return l.load(ctx, k)
}

func (l *Loader) Validate() error {
	if l.load == nil {
		return errors.New("source has no loader", errors.CategoryValidation).
			WithTextCode("NIL_SOURCE_LOADER")
	}
	return l.sourceType.validate()
}

const (
	SourceTypeDefault   SourceType = "default"
	SourceTypeLocalFile SourceType = "file"
	SourceTypeEnv       SourceType = "env"
	SourceTypeStruct    SourceType = "struct"
)

type Priority int

// store.WithSource(FileSource[...]("/etc/app.toml", PrioritySite.WithOffset(-1)))
func (p Priority) WithOffset(offset int) Priority {
	return Priority(int(p) + offset)
}

// Loading order mirrors the usual system, user, site, environment chain.
var (
	PriorityDefaults Priority = 0
	PriorityStruct   Priority = 10
	PriorityGlobal   Priority = 20
	PriorityUser     Priority = 30
	PrioritySite     Priority = 40
	PriorityEnv      Priority = 50
)

var DefaultEnvPrefix = "APP_"

func (t SourceType) String() string {
	return string(t)
}

func (t SourceType) validate() error {
	switch t {
	case SourceTypeDefault, SourceTypeLocalFile, SourceTypeEnv, SourceTypeStruct:
		return nil
	default:
		return errors.New("invalid source type", errors.CategoryValidation).
			WithTextCode("INVALID_SOURCE_TYPE").
			WithMetadata(map[string]any{
				"source_type": string(t),
				"valid_types": []string{
					string(SourceTypeDefault),
					string(SourceTypeLocalFile),
					string(SourceTypeEnv),
					string(SourceTypeStruct),
				},
			})
	}
}

// MapSource loads sections from an in-memory map, e.g.
//
//	{"global": {"timeout": "60"}, "install": {"no-deps": "yes"}}
func MapSource(values map[string]any, order ...int) SourceBuilder {
	return func(s *Store) (Source, error) {
		if values == nil {
			return nil, errors.New("map source cannot be nil", errors.CategoryBadInput).
				WithTextCode("NIL_MAP")
		}
		provider := confmap.Provider(values, s.delimiter)
		return &Loader{
			sourceType: SourceTypeDefault,
			order:      getOrder(PriorityDefaults, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				if err := k.Load(provider, nil); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load map values").
						WithTextCode("MAP_LOAD_FAILED").
						WithMetadata(map[string]any{
							"sections": len(values),
						})
				}
				return nil
			},
		}, nil
	}
}

// FileSource loads a json, toml or yaml file whose top level keys are sections.
func FileSource(path string, order ...int) SourceBuilder {
	filetype := inferConfigFiletype(path)

	return func(s *Store) (Source, error) {
		if path == "" {
			return nil, errors.New("file path cannot be empty", errors.CategoryBadInput).
				WithTextCode("EMPTY_FILE_PATH")
		}
		parser := filetype.Parser()
		provider := file.Provider(path)

		return &Loader{
			sourceType: SourceTypeLocalFile,
			order:      getOrder(PriorityGlobal, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				s.logger.Debug("file source %s (%s)", path, filetype)
				if err := k.Load(provider, parser); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load configuration from file").
						WithTextCode("FILE_LOAD_FAILED").
						WithMetadata(map[string]any{
							"filepath":  path,
							"file_type": string(filetype),
						})
				}
				return nil
			},
		}, nil
	}
}

// EnvSource loads prefix-matching variables into SectionEnv.
func EnvSource(prefix string, order ...int) SourceBuilder {
	return EnvSourceWith(prefix, nil, order...)
}

// EnvSourceWith is EnvSource with a custom variable reader, mostly for tests.
func EnvSourceWith(prefix string, environ func() []string, order ...int) SourceBuilder {
	return func(s *Store) (Source, error) {
		if prefix == "" {
			prefix = DefaultEnvPrefix
		}
		provider := env.Provider(prefix, SectionEnv, env.WithEnviron(environ))

		return &Loader{
			sourceType: SourceTypeEnv,
			order:      getOrder(PriorityEnv, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				s.logger.Debug("env source, prefix %s", prefix)
				if err := k.Load(provider, json.Parser()); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load environment variables").
						WithTextCode("ENV_LOAD_FAILED").
						WithMetadata(map[string]any{
							"prefix": prefix,
						})
				}
				return nil
			},
		}, nil
	}
}

// StructSource loads a struct tagged with `koanf`, where each top level field
// is a section.
func StructSource(v any, order ...int) SourceBuilder {
	return func(s *Store) (Source, error) {
		if v == nil {
			return nil, errors.New("struct cannot be nil", errors.CategoryBadInput).
				WithTextCode("NIL_STRUCT")
		}
		provider := structs.Provider(v, "koanf")

		return &Loader{
			sourceType: SourceTypeStruct,
			order:      getOrder(PriorityStruct, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				s.logger.Debug("struct source %T", v)
				if err := k.Load(provider, nil); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load configuration from struct").
						WithTextCode("STRUCT_LOAD_FAILED")
				}
				return nil
			},
		}, nil
	}
}

type ErrorFilter func(err error) bool

func DefaultErrorFilter(allowedErrors ...error) ErrorFilter {
	return func(err error) bool {
		if err == nil {
			return false
		}

		if len(allowedErrors) == 0 {
			// ignore absent files but surface other errors i.e. a parse failure
			return os.IsNotExist(err) || goerrors.Is(err, os.ErrNotExist) || goerrors.Is(err, syscall.ENOENT)
		}

		for _, allowed := range allowedErrors {
			if goerrors.Is(err, allowed) {
				return true
			}
		}

		return false
	}
}

// OptionalSource wraps a source so that errors accepted by the filter are
// ignored. With no filter a missing file is not an error.
func OptionalSource(build SourceBuilder, filters ...ErrorFilter) SourceBuilder {
	ignore := DefaultErrorFilter()
	if len(filters) > 0 && filters[0] != nil {
		ignore = filters[0]
	}

	return func(s *Store) (Source, error) {
		base, err := build(s)
		if err != nil {
			return nil, err
		}

		return &Loader{
			sourceType: base.Type(),
			order:      base.Priority(),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				err := base.Load(ctx, k)
				if err != nil && ignore(err) {
					s.logger.Debug("ignoring optional %s source: %v", base.Type(), err)
					return nil
				}
				return err
			},
		}, nil
	}
}

func getOrder(defaultOrder Priority, orders ...int) int {
	if len(orders) > 0 {
		return orders[0]
	}
	return int(defaultOrder)
}
