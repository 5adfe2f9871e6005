package solvers

import (
	"strings"

	"github.com/knadh/koanf/v2"
)

type variables struct {
	delimiters *delimiters
}

// NewVariablesSolver replaces references such as ${global.index-url} with the
// value stored under that path. Unknown references are left untouched. A
// value that is exactly one reference takes the referenced value as is,
// otherwise the reference is substituted inline as text.
func NewVariablesSolver(s, e string) ConfigSolver {
	return &variables{
		delimiters: &delimiters{
			Start: s,
			End:   e,
		},
	}
}

func (s variables) Solve(config *koanf.Koanf) *koanf.Koanf {
	keys, values := stringLeaves(config)
	for _, key := range keys {
		if next, ok := s.resolve(key, values[key], config); ok {
			config.Set(key, next)
		}
	}
	return config
}

func (s variables) resolve(key, val string, config *koanf.Koanf) (any, bool) {
	start, end := s.delimiters.Start, s.delimiters.End

	if strings.HasPrefix(val, start) && strings.HasSuffix(val, end) &&
		strings.Count(val, start) == 1 && len(val) > len(start)+len(end) {
		path := val[len(start) : len(val)-len(end)]
		if path != key && config.Exists(path) {
			return config.Get(path), true
		}
	}

	var (
		out      strings.Builder
		rest     = val
		replaced bool
	)
	for {
		i := strings.Index(rest, start)
		if i < 0 {
			break
		}
		j := strings.Index(rest[i+len(start):], end)
		if j < 0 {
			break
		}
		path := rest[i+len(start) : i+len(start)+j]
		ref := rest[:i+len(start)+j+len(end)]
		rest = rest[i+len(start)+j+len(end):]

		if path == "" || path == key || !config.Exists(path) {
			out.WriteString(ref)
			continue
		}
		out.WriteString(ref[:i])
		out.WriteString(ToString(config.Get(path)))
		replaced = true
	}
	if !replaced {
		return nil, false
	}
	out.WriteString(rest)
	return out.String(), true
}
