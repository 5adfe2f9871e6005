package optparse

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// flagValue adapts an Option to pflag.Value. It starts from the resolved
// default and records the value given on the command line.
type flagValue struct {
	opt   Option
	ctx   *EvalContext
	value any
	set   bool
}

var _ pflag.Value = (*flagValue)(nil)

func newFlagValue(opt Option, def any, ctx *EvalContext) *flagValue {
	return &flagValue{opt: opt, ctx: ctx, value: def}
}

func (f *flagValue) Type() string {
	switch f.opt.Action {
	case ActionFlagTrue, ActionFlagFalse:
		return "bool"
	case ActionCount:
		return "count"
	case ActionAppend:
		return "stringArray"
	}
	return "string"
}

func (f *flagValue) String() string {
	switch v := f.value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, " ")
	}
	return fmt.Sprint(f.value)
}

func (f *flagValue) Set(raw string) error {
	opt := f.opt
	switch opt.Action {
	case ActionPlain:
		v, err := coercePlain(opt, raw)
		if err != nil {
			return err
		}
		f.value = v

	case ActionFlagTrue, ActionFlagFalse:
		b, err := ParseBool(raw)
		if err != nil {
			return err
		}
		if opt.Action == ActionFlagFalse {
			b = !b
		}
		f.value = b

	case ActionCount:
		if raw == "+1" {
			current, _ := f.value.(int)
			f.value = current + 1
			break
		}
		n, err := parseCount(raw)
		if err != nil {
			return err
		}
		f.value = n

	case ActionAppend:
		v, err := coercePlain(opt, raw)
		if err != nil {
			return err
		}
		if !f.set {
			f.value = nil
		}
		f.value = appendValue(f.value, v)

	case ActionCallback:
		var v any
		if opt.TakesValue {
			converted, err := coercePlain(opt, raw)
			if err != nil {
				return err
			}
			v = converted
		}
		if err := opt.Callback(opt, opt.FlagString(), v, f.ctx); err != nil {
			return err
		}
		f.value = f.ctx.Get(opt.Dest)

	default:
		return fmt.Errorf("unknown action %s", opt.Action)
	}

	f.set = true
	return nil
}

func appendValue(current, v any) any {
	s, isString := v.(string)
	switch list := current.(type) {
	case nil:
		if isString {
			return []string{s}
		}
		return []any{v}
	case []string:
		if isString {
			return append(list, s)
		}
		out := make([]any, 0, len(list)+1)
		for _, item := range list {
			out = append(out, item)
		}
		return append(out, v)
	case []any:
		return append(list, v)
	}
	return []any{current, v}
}

// noOptDefault is the value pflag uses when a flag is given without one.
func noOptDefault(opt Option) string {
	switch opt.Action {
	case ActionFlagTrue, ActionFlagFalse:
		return "true"
	case ActionCount:
		return "+1"
	case ActionCallback:
		if !opt.TakesValue {
			return "true"
		}
	}
	return ""
}
