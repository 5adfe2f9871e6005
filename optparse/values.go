package optparse

import (
	"sort"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-cliconf/cfgx"
)

// Values holds the merged result of one parse: resolved defaults overridden
// by the flags given on the command line.
type Values struct {
	k       *koanf.Koanf
	changed map[string]bool
	args    []string
}

func newValues(defaults *Defaults, fs *pflag.FlagSet, flags map[string]*flagValue, ctx *EvalContext) (*Values, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults.Map(), "."), nil); err != nil {
		return nil, err
	}

	changed := map[string]bool{}
	provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
		fv, ok := flags[f.Name]
		if !ok || !f.Changed {
			return "", nil
		}
		changed[fv.opt.Dest] = true
		if fv.opt.Action == ActionCallback {
			return "", nil
		}
		return fv.opt.Dest, fv.value
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, err
	}

	for _, dest := range ctx.Touched() {
		if err := k.Set(dest, ctx.Get(dest)); err != nil {
			return nil, err
		}
		changed[dest] = true
	}

	return &Values{
		k:       k,
		changed: changed,
		args:    fs.Args(),
	}, nil
}

// Get returns the value for dest.
func (v *Values) Get(dest string) any {
	return v.k.Get(dest)
}

func (v *Values) String(dest string) string {
	return v.k.String(dest)
}

func (v *Values) Bool(dest string) bool {
	return v.k.Bool(dest)
}

func (v *Values) Int(dest string) int {
	return v.k.Int(dest)
}

func (v *Values) Strings(dest string) []string {
	return v.k.Strings(dest)
}

// All returns every destination and its value.
func (v *Values) All() map[string]any {
	return v.k.Raw()
}

// Changed reports whether dest was set on the command line.
func (v *Values) Changed(dest string) bool {
	return v.changed[dest]
}

// ChangedDests returns the sorted destinations set on the command line.
func (v *Values) ChangedDests() []string {
	out := make([]string, 0, len(v.changed))
	for dest := range v.changed {
		out = append(out, dest)
	}
	sort.Strings(out)
	return out
}

// Args returns the positional arguments left after flag parsing.
func (v *Values) Args() []string {
	return append([]string(nil), v.args...)
}

// Bind decodes the values into T using `opt` struct tags.
func Bind[T any](v *Values, opts ...cfgx.Option[T]) (T, error) {
	all := append([]cfgx.Option[T]{cfgx.WithTagName[T]("opt")}, opts...)
	return cfgx.Build[T](v.All(), all...)
}
