package optparse

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	for _, raw := range []string{"yes", "true", "1", "on", "YES", "True", "On"} {
		b, err := ParseBool(raw)
		require.NoError(t, err, raw)
		assert.True(t, b, raw)
	}
	for _, raw := range []string{"no", "false", "0", "off", "NO", "False", "OFF"} {
		b, err := ParseBool(raw)
		require.NoError(t, err, raw)
		assert.False(t, b, raw)
	}
	for _, raw := range []string{"", "y", "n", "2", "maybe", " yes", "enabled"} {
		_, err := ParseBool(raw)
		assert.Error(t, err, raw)
	}
}

func TestCoerceFlags(t *testing.T) {
	for _, action := range []Action{ActionFlagTrue, ActionFlagFalse} {
		opt := Option{Key: "no-cache", Dest: "no_cache", Action: action}

		for _, raw := range []string{"yes", "true", "1", "on"} {
			v, err := Coerce(opt, raw, nil)
			require.NoError(t, err)
			assert.Equal(t, true, v, "%s %s", action, raw)
		}
		for _, raw := range []string{"no", "false", "0", "off"} {
			v, err := Coerce(opt, raw, nil)
			require.NoError(t, err)
			assert.Equal(t, false, v, "%s %s", action, raw)
		}

		_, err := Coerce(opt, "sometimes", nil)
		var cerr *CoercionError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "no-cache", cerr.Option)
		assert.Equal(t, "sometimes", cerr.Value)
		assert.Contains(t, err.Error(), "yes/no, true/false or 1/0")
		assert.True(t, errors.Is(err, ErrCoercion))
	}
}

func TestCoerceCount(t *testing.T) {
	opt := Option{Key: "verbose", Dest: "verbose", Action: ActionCount}

	tests := []struct {
		raw  string
		want int
	}{
		{"true", 1},
		{"yes", 1},
		{"1", 1},
		{"on", 1},
		{"false", 0},
		{"no", 0},
		{"0", 0},
		{"3", 3},
	}
	for _, tt := range tests {
		v, err := Coerce(opt, tt.raw, nil)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, v, tt.raw)
	}

	for _, raw := range []string{"-1", "abc", "1.5", ""} {
		_, err := Coerce(opt, raw, nil)
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), "non-negative integer", raw)
	}
}

func TestCoerceAppend(t *testing.T) {
	opt := Option{Key: "find-links", Dest: "find_links", Action: ActionAppend}

	v, err := Coerce(opt, "a b  c", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, v)

	v, err = Coerce(opt, "x x\ty", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x", "y"}, v)

	typed := Option{Key: "port", Dest: "port", Action: ActionAppend, Value: Int()}
	v, err = Coerce(typed, "80 443", nil)
	require.NoError(t, err)
	assert.Equal(t, []any{80, 443}, v)

	_, err = Coerce(typed, "80 http 443", nil)
	var cerr *CoercionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "http", cerr.Value)
}

func TestCoercePlain(t *testing.T) {
	opt := Option{Key: "timeout", Dest: "timeout", Value: Int()}

	v, err := Coerce(opt, "15", nil)
	require.NoError(t, err)
	assert.Equal(t, 15, v)

	_, err = Coerce(opt, "soon", nil)
	var cerr *CoercionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "timeout", cerr.Option)
	assert.Contains(t, err.Error(), "soon is not a valid value for timeout option")

	v, err = Coerce(Option{Key: "index-url", Dest: "index_url"}, "raw value", nil)
	require.NoError(t, err)
	assert.Equal(t, "raw value", v)
}

func TestCoerceCallback(t *testing.T) {
	var calls []string
	opt := Option{
		Key:    "no-binary",
		Dest:   "format_control",
		Action: ActionCallback,
		Value:  Transform(ToLower),
		Callback: func(opt Option, flag string, value any, ctx *EvalContext) error {
			calls = append(calls, flag)
			ctx.Set(opt.Dest, fmt.Sprintf("nb:%v", value))
			return nil
		},
	}

	ctx := NewEvalContext(nil)
	v, err := Coerce(opt, "PKG", ctx)
	require.NoError(t, err)
	assert.Equal(t, "pkg", v)
	assert.Equal(t, []string{"--no-binary"}, calls)
	assert.Equal(t, "nb:pkg", ctx.Get("format_control"))
	assert.Equal(t, []string{"format_control"}, ctx.Touched())

	failing := opt
	failing.Callback = func(Option, string, any, *EvalContext) error {
		return errors.New("unknown package")
	}
	_, err = Coerce(failing, "x", NewEvalContext(nil))
	var cerr *CoercionError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), "unknown package")
}

func TestCoerceUnknownAction(t *testing.T) {
	_, err := Coerce(Option{Key: "odd", Action: Action(42)}, "x", nil)
	assert.ErrorIs(t, err, ErrCoercion)
}
