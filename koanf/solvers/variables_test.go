package solvers

import (
	"testing"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, values map[string]any) *koanf.Koanf {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(confmap.Provider(values, "."), nil))
	return k
}

func TestVariablesSolver(t *testing.T) {
	k := load(t, map[string]any{
		"global": map[string]any{
			"index-url": "https://pypi.example/simple",
			"timeout":   60,
		},
		"install": map[string]any{
			"index-url":    "${global.index-url}",
			"timeout":      "${global.timeout}",
			"extra":        "${global.index-url}/extra",
			"missing":      "${nothing}",
			"self":         "${install.self}",
			"unterminated": "${global.timeout",
		},
	})

	out := NewVariablesSolver("${", "}").Solve(k)

	assert.Equal(t, "https://pypi.example/simple", out.String("install.index-url"))
	assert.Equal(t, 60, out.Get("install.timeout"), "whole-value references keep the referenced type")
	assert.Equal(t, "https://pypi.example/simple/extra", out.String("install.extra"))
	assert.Equal(t, "${nothing}", out.String("install.missing"))
	assert.Equal(t, "${install.self}", out.String("install.self"))
	assert.Equal(t, "${global.timeout", out.String("install.unterminated"))
}

func TestVariablesSolverMultipleReferences(t *testing.T) {
	k := load(t, map[string]any{
		"global": map[string]any{
			"host":   "example.com",
			"scheme": "https",
			"url":    "${global.scheme}://${global.host}/simple",
		},
	})

	out := NewVariablesSolver("${", "}").Solve(k)
	assert.Equal(t, "https://example.com/simple", out.String("global.url"))
}

func TestVariablesSolverCustomDelimiters(t *testing.T) {
	k := load(t, map[string]any{
		"version": "0.23.45",
		"context": map[string]any{
			"version": "@/version/",
		},
		"not_matching": "@/nothing/",
	})

	out := NewVariablesSolver("@/", "/").Solve(k)
	assert.Equal(t, "0.23.45", out.Get("context.version"))
	assert.Equal(t, "@/nothing/", out.Get("not_matching"))
}
