package solvers

import (
	"fmt"
	"sort"

	"github.com/knadh/koanf/v2"
)

// ConfigSolver rewrites values of a loaded configuration tree in place.
type ConfigSolver interface {
	Solve(config *koanf.Koanf) *koanf.Koanf
}

// ToString renders a resolved value for inline substitution.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

type delimiters struct {
	Start string
	End   string
}

// stringLeaves returns the string leaves of config ordered by key so solver
// passes are deterministic.
func stringLeaves(config *koanf.Koanf) ([]string, map[string]string) {
	all := config.All()
	keys := make([]string, 0, len(all))
	values := make(map[string]string, len(all))
	for key, val := range all {
		s, ok := val.(string)
		if !ok {
			continue
		}
		keys = append(keys, key)
		values[key] = s
	}
	sort.Strings(keys)
	return keys, values
}
