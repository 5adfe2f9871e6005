package optparse

import "strings"

// ValueFunc validates and converts a raw string for one option. It is the
// only place option-specific typing happens. ValueFuncs that return strings
// must be idempotent, since string defaults are checked again once resolved.
type ValueFunc func(raw string) (any, error)

// CallbackFunc receives the converted value of a callback option together
// with the flag spelling that triggered it. It records results in ctx,
// usually under opt.Dest, instead of returning them.
type CallbackFunc func(opt Option, flag string, value any, ctx *EvalContext) error

// Option describes one recognized option. Key doubles as the long flag name
// (without dashes) and the configuration key.
type Option struct {
	Key     string
	Short   string
	Dest    string
	Action  Action
	Metavar string
	Default any
	Help    string
	Group   string
	Hidden  bool

	// Value converts raw input for plain, append and callback options.
	Value ValueFunc

	// Callback is required for ActionCallback.
	Callback CallbackFunc
	// TakesValue marks a callback option that consumes an argument.
	TakesValue bool
}

// FlagString is the preferred flag spelling, as passed to callbacks.
func (o Option) FlagString() string {
	if o.Key != "" {
		return "--" + o.Key
	}
	return "-" + o.Short
}

// TakesArg reports whether the CLI flag consumes a value.
func (o Option) TakesArg() bool {
	switch o.Action {
	case ActionPlain, ActionAppend:
		return true
	case ActionCallback:
		return o.TakesValue
	}
	return false
}

// MetavarOrDest is the display hint for the option's argument.
func (o Option) MetavarOrDest() string {
	if o.Metavar != "" {
		return o.Metavar
	}
	return strings.ToLower(o.Dest)
}

// IsURL reports whether the option holds URL-shaped values whose
// credentials must be redacted when displayed.
func (o Option) IsURL() bool {
	return strings.EqualFold(o.Metavar, "url")
}

func defaultDest(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}
