package optparse

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoice(t *testing.T) {
	fn := Choice("on", "off")

	v, err := fn("on")
	require.NoError(t, err)
	assert.Equal(t, "on", v)

	_, err = fn("maybe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"on", "off"`)
}

func TestIntValidators(t *testing.T) {
	v, err := Int()("-3")
	require.NoError(t, err)
	assert.Equal(t, -3, v)

	_, err = Int()("3.0")
	assert.Error(t, err)

	v, err = NonNegativeInt()("0")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	_, err = NonNegativeInt()("-1")
	assert.Error(t, err)
}

func TestURLValidator(t *testing.T) {
	v, err := URL()("https://user:pw@example.com/simple")
	require.NoError(t, err)
	assert.Equal(t, "https://user:pw@example.com/simple", v)

	for _, raw := range []string{"example.com", "/local/path", "https://"} {
		_, err := URL()(raw)
		assert.Error(t, err, raw)
	}
}

func TestPathValidator(t *testing.T) {
	orig := userHome
	userHome = func() (string, error) { return "/home/tester", nil }
	t.Cleanup(func() { userHome = orig })

	v, err := Path()("~/cache/../wheels")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", "wheels"), v)

	v, err = Path()("/tmp//x/")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/tmp/x"), v)

	again, err := Path()(v.(string))
	require.NoError(t, err)
	assert.Equal(t, v, again)

	_, err = Path()("")
	assert.Error(t, err)
}

func TestTransformAndChain(t *testing.T) {
	v, err := Transform(TrimSpace, ToUpper)("  abc ")
	require.NoError(t, err)
	assert.Equal(t, "ABC", v)

	fn := Chain(Transform(TrimSpace, ToLower), Choice("fast", "slow"))
	v, err = fn(" FAST ")
	require.NoError(t, err)
	assert.Equal(t, "fast", v)

	_, err = fn("medium")
	assert.Error(t, err)

	v, err = Chain(Int(), Transform(ToUpper))("7")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestExprRule(t *testing.T) {
	fn, err := ExprRule(`len(value) <= 5`)
	require.NoError(t, err)

	v, err := fn("short")
	require.NoError(t, err)
	assert.Equal(t, "short", v)

	_, err = fn("too long")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not satisfy")

	upper := MustExprRule(`upper(value)`)
	v, err = upper("abc")
	require.NoError(t, err)
	assert.Equal(t, "ABC", v)

	_, err = ExprRule("")
	assert.Error(t, err)

	assert.Panics(t, func() { MustExprRule("") })
}
