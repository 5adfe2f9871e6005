package optparse

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-errors"
	opts "github.com/goliatone/go-options"
)

// StringTransformer normalizes a raw value before it is validated.
type StringTransformer func(string) string

// TrimSpace removes leading and trailing whitespace.
func TrimSpace(s string) string { return strings.TrimSpace(s) }

// ToLower lowercases the value.
func ToLower(s string) string { return strings.ToLower(s) }

// ToUpper uppercases the value.
func ToUpper(s string) string { return strings.ToUpper(s) }

// Transform applies transformers in order and returns the resulting string.
func Transform(transformers ...StringTransformer) ValueFunc {
	return func(raw string) (any, error) {
		for _, t := range transformers {
			if t != nil {
				raw = t(raw)
			}
		}
		return raw, nil
	}
}

// Choice accepts only one of the given values.
func Choice(choices ...string) ValueFunc {
	return func(raw string) (any, error) {
		for _, c := range choices {
			if raw == c {
				return raw, nil
			}
		}
		quoted := make([]string, len(choices))
		for i, c := range choices {
			quoted[i] = strconv.Quote(c)
		}
		return nil, fmt.Errorf("invalid choice: %q (choose from %s)", raw, strings.Join(quoted, ", "))
	}
}

// Int parses a base 10 integer.
func Int() ValueFunc {
	return func(raw string) (any, error) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %q", raw)
		}
		return n, nil
	}
}

// NonNegativeInt parses a base 10 integer that must be >= 0.
func NonNegativeInt() ValueFunc {
	return func(raw string) (any, error) {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid non-negative integer value: %q", raw)
		}
		return n, nil
	}
}

// URL requires an absolute URL with a scheme and host. The raw string is
// kept so credentials survive untouched until display.
func URL() ValueFunc {
	return func(raw string) (any, error) {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid URL: %q", raw)
		}
		return raw, nil
	}
}

// Path expands a leading ~ to $HOME and cleans the result.
func Path() ValueFunc {
	return func(raw string) (any, error) {
		if raw == "" {
			return nil, fmt.Errorf("path cannot be empty")
		}
		return expandUser(raw), nil
	}
}

var userHome = os.UserHomeDir

func expandUser(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := userHome(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return filepath.Clean(p)
}

// Chain runs each ValueFunc on the string output of the previous one. A
// non-string result ends the chain.
func Chain(funcs ...ValueFunc) ValueFunc {
	return func(raw string) (any, error) {
		var current any = raw
		for _, fn := range funcs {
			if fn == nil {
				continue
			}
			s, ok := current.(string)
			if !ok {
				return current, nil
			}
			v, err := fn(s)
			if err != nil {
				return nil, err
			}
			current = v
		}
		return current, nil
	}
}

// ExprRule compiles an expr-lang expression evaluated with the raw string
// bound to `value`. A bool result acts as a predicate and keeps the raw
// value; any other result replaces it.
func ExprRule(expression string) (ValueFunc, error) {
	rule, err := opts.NewExprEvaluator().Compile(expression)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid value rule").
			WithTextCode("INVALID_VALUE_RULE").
			WithMetadata(map[string]any{
				"expression": expression,
			})
	}

	return func(raw string) (any, error) {
		out, err := rule.Evaluate(opts.RuleContext{
			Snapshot: map[string]any{"value": raw},
		})
		if err != nil {
			return nil, fmt.Errorf("rule %q failed for %q: %w", expression, raw, err)
		}
		if ok, isBool := out.(bool); isBool {
			if !ok {
				return nil, fmt.Errorf("%q does not satisfy %s", raw, expression)
			}
			return raw, nil
		}
		return out, nil
	}, nil
}

// MustExprRule is ExprRule for static registries.
func MustExprRule(expression string) ValueFunc {
	fn, err := ExprRule(expression)
	if err != nil {
		panic(err)
	}
	return fn
}
