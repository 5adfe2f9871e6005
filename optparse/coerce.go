package optparse

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBool reads the fixed boolean spellings: yes/true/1/on and
// no/false/0/off, in any case.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "yes", "true", "1", "on":
		return true, nil
	case "no", "false", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid truth value %q", raw)
}

// Coerce converts a raw configuration string into the value opt stores.
// Callback options run their handler against ctx and return the converted
// value; the stored result is whatever the handler leaves in ctx.
func Coerce(opt Option, raw string, ctx *EvalContext) (any, error) {
	switch opt.Action {
	case ActionPlain:
		return coercePlain(opt, raw)

	case ActionFlagTrue, ActionFlagFalse:
		b, err := ParseBool(raw)
		if err != nil {
			return nil, &CoercionError{
				Option: opt.Key,
				Value:  raw,
				Reason: fmt.Sprintf("%s is not a valid value for %s option, please specify a boolean value like yes/no, true/false or 1/0 instead.", raw, opt.Key),
				Err:    err,
			}
		}
		return b, nil

	case ActionCount:
		n, err := parseCount(raw)
		if err != nil {
			return nil, &CoercionError{
				Option: opt.Key,
				Value:  raw,
				Reason: fmt.Sprintf("%s is not a valid value for %s option, please instead specify either a non-negative integer or a boolean value like yes/no or false/true which is equivalent to 1/0.", raw, opt.Key),
				Err:    err,
			}
		}
		return n, nil

	case ActionAppend:
		tokens := strings.Fields(raw)
		values := make([]any, 0, len(tokens))
		allStrings := true
		for _, token := range tokens {
			v, err := coercePlain(opt, token)
			if err != nil {
				return nil, err
			}
			if _, ok := v.(string); !ok {
				allStrings = false
			}
			values = append(values, v)
		}
		if !allStrings {
			return values, nil
		}
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = v.(string)
		}
		return out, nil

	case ActionCallback:
		v, err := coercePlain(opt, raw)
		if err != nil {
			return nil, err
		}
		if ctx == nil {
			return v, nil
		}
		if err := opt.Callback(opt, opt.FlagString(), v, ctx); err != nil {
			return nil, &CoercionError{
				Option: opt.Key,
				Value:  raw,
				Reason: fmt.Sprintf("%s option callback failed for %s: %v", opt.Key, raw, err),
				Err:    err,
			}
		}
		return v, nil
	}

	return nil, &CoercionError{
		Option: opt.Key,
		Value:  raw,
		Reason: fmt.Sprintf("%s option has unknown action %s", opt.Key, opt.Action),
	}
}

func coercePlain(opt Option, raw string) (any, error) {
	if opt.Value == nil {
		return raw, nil
	}
	v, err := opt.Value(raw)
	if err != nil {
		return nil, &CoercionError{
			Option: opt.Key,
			Value:  raw,
			Reason: fmt.Sprintf("%s is not a valid value for %s option: %v", raw, opt.Key, err),
			Err:    err,
		}
	}
	return v, nil
}

func parseCount(raw string) (int, error) {
	if b, err := ParseBool(raw); err == nil {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}
