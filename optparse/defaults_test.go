package optparse

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(
		Option{Key: "verbose", Short: "v", Action: ActionCount, Default: 0},
		Option{Key: "timeout", Default: 15, Value: Int()},
		Option{Key: "no-cache", Dest: "cache", Action: ActionFlagFalse, Default: true},
		Option{Key: "find-links", Action: ActionAppend, Default: []string{}},
		Option{Key: "index-url", Metavar: "URL", Default: "https://pypi.org/simple"},
	)
	require.NoError(t, err)
	return reg
}

func TestBuildDefaultsEndToEnd(t *testing.T) {
	reg := MustRegistry(Option{Key: "verbose", Action: ActionCount, Default: 0})

	pairs := Resolve([]Entry{
		{Scope: ScopeGlobal, Key: "verbose", Value: "true"},
		{Scope: ScopeCommand, Key: "verbose", Value: "0"},
		{Scope: ScopeGlobal, Key: "bogus-key", Value: "x"},
	}, nil)

	d, err := BuildDefaults(reg, pairs, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Get("verbose"))
	assert.Equal(t, []string{"verbose"}, d.Dests())
}

func TestBuildDefaultsSeedsEveryDestination(t *testing.T) {
	reg := testRegistry(t)

	d, err := BuildDefaults(reg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cache", "find_links", "index_url", "timeout", "verbose"}, d.Dests())
	assert.Equal(t, 15, d.Get("timeout"))
	assert.Equal(t, true, d.Get("cache"))
}

func TestBuildDefaultsFoldsInOrder(t *testing.T) {
	reg := testRegistry(t)

	d, err := BuildDefaults(reg, []Pair{
		{Key: "timeout", Value: "30"},
		{Key: "no-cache", Value: "yes"},
		{Key: "find-links", Value: "/a /b"},
		{Key: "timeout", Value: "60"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 60, d.Get("timeout"))
	assert.Equal(t, true, d.Get("cache"), "flag values from configuration are stored as parsed")
	assert.Equal(t, []string{"/a", "/b"}, d.Get("find_links"))
}

func TestBuildDefaultsAbortsOnFirstFailure(t *testing.T) {
	reg := testRegistry(t)

	d, err := BuildDefaults(reg, []Pair{
		{Key: "timeout", Value: "30"},
		{Key: "verbose", Value: "loud"},
		{Key: "timeout", Value: "later"},
	}, nil)
	assert.Nil(t, d)
	var cerr *CoercionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "verbose", cerr.Option)
}

func TestBuildDefaultsDefersCallbacks(t *testing.T) {
	var seen []any
	reg := MustRegistry(
		Option{Key: "mode", Default: "fast"},
		Option{
			Key:    "tag",
			Action: ActionCallback,
			Callback: func(opt Option, flag string, value any, ctx *EvalContext) error {
				seen = append(seen, ctx.Get("mode"))
				tags, _ := ctx.Get(opt.Dest).([]string)
				ctx.Set(opt.Dest, append(tags, value.(string)))
				return nil
			},
			TakesValue: true,
		},
	)

	d, err := BuildDefaults(reg, []Pair{
		{Key: "tag", Value: "a"},
		{Key: "mode", Value: "slow"},
		{Key: "tag", Value: "b"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []any{"fast", "slow"}, seen)
	assert.Equal(t, []string{"a", "b"}, d.Get("tag"))
	assert.Equal(t, "slow", d.Get("mode"))
}

func TestBuildDefaultsIsIdempotent(t *testing.T) {
	reg := testRegistry(t)
	pairs := []Pair{
		{Key: "timeout", Value: "30"},
		{Key: "find-links", Value: "/a /b"},
		{Key: "verbose", Value: "2"},
	}

	first, err := BuildDefaults(reg, pairs, nil)
	require.NoError(t, err)
	second, err := BuildDefaults(reg, pairs, nil)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.True(t, strings.HasPrefix(string(a), `{"cache":true`))
}

func TestDefaultsSnapshotIsImmutable(t *testing.T) {
	reg := testRegistry(t)
	d, err := BuildDefaults(reg, []Pair{{Key: "find-links", Value: "/a"}}, nil)
	require.NoError(t, err)

	m := d.Map()
	m["timeout"] = 1
	m["find_links"].([]string)[0] = "/changed"

	assert.Equal(t, 15, d.Get("timeout"))
	assert.Equal(t, []string{"/a"}, d.Get("find_links"))

	d.Get("find_links").([]string)[0] = "/mutated"
	v, ok := d.Lookup("find_links")
	require.True(t, ok)
	v.([]string)[0] = "/mutated"
	assert.Equal(t, []string{"/a"}, d.Get("find_links"))
	assert.Equal(t, []string{"/a"}, d.Map()["find_links"])

	_, ok = d.Lookup("missing")
	assert.False(t, ok)

	var nilDefaults *Defaults
	assert.Nil(t, nilDefaults.Get("x"))
	assert.Empty(t, nilDefaults.Map())
}

func TestBuildDefaultsLeavesRegistryUntouched(t *testing.T) {
	reg := MustRegistry(Option{
		Key:        "tag",
		Action:     ActionCallback,
		Default:    []string{"x"},
		TakesValue: true,
		Callback: func(opt Option, flag string, value any, ctx *EvalContext) error {
			ctx.Get(opt.Dest).([]string)[0] = value.(string)
			return nil
		},
	})
	pairs := []Pair{{Key: "tag", Value: "y"}}

	first, err := BuildDefaults(reg, pairs, nil)
	require.NoError(t, err)
	second, err := BuildDefaults(reg, pairs, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"y"}, first.Get("tag"))
	assert.Equal(t, first.Map(), second.Map())

	opt, ok := reg.Lookup("tag")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, opt.Default)
	assert.Equal(t, []string{"x"}, reg.Defaults()["tag"])
}

func TestBuildDefaultsLogsUnknownKeys(t *testing.T) {
	log := &recordingLogger{}

	d, err := BuildDefaults(testRegistry(t), []Pair{
		{Key: "bogus-key", Value: "x"},
		{Key: "timeout", Value: "30"},
	}, log)
	require.NoError(t, err)

	assert.Equal(t, 30, d.Get("timeout"))
	assert.Equal(t, []string{`ignoring unknown configuration key "bogus-key"`}, log.infos)
	assert.Empty(t, log.errors)
}
