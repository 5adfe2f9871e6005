package optparse

import (
	"encoding/json"
	"sort"

	"github.com/goliatone/go-errors"
	"github.com/mitchellh/copystructure"

	"github.com/goliatone/go-cliconf/logger"
)

// Defaults is the immutable destination to value snapshot produced by one
// resolution cycle.
type Defaults struct {
	values map[string]any
}

// BuildDefaults folds pairs, in override order, over the registry defaults.
// Unknown keys are skipped. Callback destinations are read back from the
// evaluation context once every pair has been folded. The first coercion
// failure aborts the cycle and no partial result is returned.
func BuildDefaults(reg *Registry, pairs []Pair, log logger.Logger) (*Defaults, error) {
	values, err := buildDefaults(reg, pairs, log)
	if err != nil {
		return nil, err
	}
	return newDefaults(values)
}

func buildDefaults(reg *Registry, pairs []Pair, log logger.Logger) (map[string]any, error) {
	if log == nil {
		log = logger.Nop()
	}

	values := reg.Defaults()
	ctx := NewEvalContext(values)

	var late []string
	lateSeen := map[string]bool{}

	for _, pair := range pairs {
		opt, ok := reg.Lookup(pair.Key)
		if !ok {
			log.Info("ignoring unknown configuration key %q", pair.Key)
			continue
		}

		if opt.Action == ActionCallback {
			if !lateSeen[opt.Dest] {
				lateSeen[opt.Dest] = true
				late = append(late, opt.Dest)
			}
			if _, err := Coerce(opt, pair.Value, ctx); err != nil {
				return nil, err
			}
			continue
		}

		v, err := Coerce(opt, pair.Value, ctx)
		if err != nil {
			return nil, err
		}
		values[opt.Dest] = v
		ctx.mirror(opt.Dest, v)
	}

	for _, dest := range late {
		values[dest] = ctx.Get(dest)
	}

	return values, nil
}

func newDefaults(values map[string]any) (*Defaults, error) {
	copied, err := copystructure.Copy(values)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to snapshot option defaults").
			WithTextCode("DEFAULTS_SNAPSHOT_FAILED")
	}
	m, _ := copied.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return &Defaults{values: m}, nil
}

// cloneValue deep copies v. copystructure cannot type an untyped nil.
func cloneValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return copystructure.Copy(v)
}

// Get returns a copy of the value for dest, nil when unknown.
func (d *Defaults) Get(dest string) any {
	v, _ := d.Lookup(dest)
	return v
}

// Lookup reports whether dest is a known destination. The returned value is
// a deep copy.
func (d *Defaults) Lookup(dest string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[dest]
	if !ok {
		return nil, false
	}
	// values already passed copystructure in newDefaults
	return copystructure.Must(cloneValue(v)), true
}

// Map returns a deep copy of every destination and value.
func (d *Defaults) Map() map[string]any {
	if d == nil {
		return map[string]any{}
	}
	return copystructure.Must(copystructure.Copy(d.values)).(map[string]any)
}

// Dests returns the sorted destinations.
func (d *Defaults) Dests() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.values))
	for k := range d.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders the snapshot with sorted keys.
func (d *Defaults) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d.values)
}
