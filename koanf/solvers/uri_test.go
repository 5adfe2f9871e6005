package solvers

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestURISolverBase64(t *testing.T) {
	k := load(t, map[string]any{
		"global": map[string]any{
			"password": "@base64://I3B3MTI7UmFkZCRhLjI0Mw==",
			"broken":   "@base64://%%%",
		},
	})

	out := NewURISolver("@", "://").Solve(k)
	assert.Equal(t, "#pw12;Radd$a.243", out.String("global.password"))
	assert.Equal(t, "@base64://%%%", out.String("global.broken"))
}

func TestURISolverFile(t *testing.T) {
	fsys := fstest.MapFS{
		"secrets/token": &fstest.MapFile{Data: []byte("s3cr3t\n")},
	}
	k := load(t, map[string]any{
		"global": map[string]any{
			"token":   "@file://secrets/token",
			"missing": "@file://secrets/none",
			"url":     "https://user@host/simple",
			"other":   "@ftp://somewhere",
		},
	})

	out := NewURISolverWithFS("@", "://", fsys).Solve(k)
	assert.Equal(t, "s3cr3t", out.String("global.token"))
	assert.Equal(t, "@file://secrets/none", out.String("global.missing"))
	assert.Equal(t, "https://user@host/simple", out.String("global.url"))
	assert.Equal(t, "@ftp://somewhere", out.String("global.other"))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "42", ToString(42))
	assert.Equal(t, "true", ToString(true))
}
