package env

import (
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/sjson"
)

// Env collects prefixed environment variables into a single configuration
// section, e.g. with prefix "APP_" and section ":env:"
//
//	APP_INDEX_URL=https://example/simple -> {":env:": {"index-url": "https://example/simple"}}
//	APP_NO_CACHE_DIR=true                -> {":env:": {"no-cache-dir": "true"}}
//
// Output is JSON, so the provider must be loaded with the koanf json parser.
type Env struct {
	prefix    string
	section   string
	environ   func() []string
	normalize func(name string) string
}

type Option func(*Env)

// WithEnviron replaces os.Environ as the variable source.
func WithEnviron(fn func() []string) Option {
	return func(e *Env) {
		if fn != nil {
			e.environ = fn
		}
	}
}

// WithNormalizer overrides how a variable name (prefix already stripped) is
// turned into an option key. Returning "" skips the variable.
func WithNormalizer(fn func(name string) string) Option {
	return func(e *Env) {
		if fn != nil {
			e.normalize = fn
		}
	}
}

// Provider returns an environment provider for prefix. The prefix match is
// case-sensitive and an empty prefix is rejected at read time, since
// collecting the whole environment into option keys is never intended.
func Provider(prefix, section string, opts ...Option) *Env {
	e := &Env{
		prefix:    prefix,
		section:   section,
		environ:   os.Environ,
		normalize: NormalizeKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// NormalizeKey lowercases name and turns underscores into dashes so
// NO_CACHE_DIR matches the --no-cache-dir option.
func NormalizeKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// ReadBytes renders the matching variables as a JSON document.
func (e *Env) ReadBytes() ([]byte, error) {
	if e.prefix == "" {
		return nil, errors.New("env provider requires a prefix")
	}
	if e.section == "" {
		return nil, errors.New("env provider requires a section")
	}

	vars := map[string]string{}
	for _, kv := range e.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, e.prefix) {
			continue
		}
		key := e.normalize(strings.TrimPrefix(name, e.prefix))
		if key == "" {
			continue
		}
		vars[key] = value
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := "{}"
	for _, key := range keys {
		next, err := sjson.Set(out, escapePath(e.section)+"."+escapePath(key), vars[key])
		if err != nil {
			return nil, err
		}
		out = next
	}

	return []byte(out), nil
}

// Read is not supported, use ReadBytes with the json parser.
func (e *Env) Read() (map[string]any, error) {
	return nil, errors.New("env provider does not support this method")
}

// escapePath makes s a single literal sjson path component.
func escapePath(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
