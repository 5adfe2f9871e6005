package optparse

import (
	"github.com/goliatone/go-cliconf/config"
	"github.com/goliatone/go-cliconf/logger"
)

// Scope is a configuration section with a fixed precedence rank. Higher
// scopes override lower ones.
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeCommand
	ScopeEnvironment

	scopeCount
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeCommand:
		return "command"
	case ScopeEnvironment:
		return "environment"
	}
	return "unknown"
}

// ScopeOf maps a store section to its scope. Sections other than global,
// the command name and the environment section report false.
func ScopeOf(section, command string) (Scope, bool) {
	switch {
	case section == config.SectionGlobal:
		return ScopeGlobal, true
	case section == config.SectionEnv:
		return ScopeEnvironment, true
	case command != "" && section == command:
		return ScopeCommand, true
	}
	return 0, false
}

// Entry is one raw configuration value tagged with its scope.
type Entry struct {
	Scope Scope
	Key   string
	Value string
}

// Entries keeps the store items that belong to a known scope for command,
// in store order.
func Entries(items []config.Item, command string) []Entry {
	out := make([]Entry, 0, len(items))
	for _, item := range items {
		scope, ok := ScopeOf(item.Section, command)
		if !ok {
			continue
		}
		out = append(out, Entry{Scope: scope, Key: item.Key, Value: item.Value})
	}
	return out
}

// Pair is a key and raw value in override order.
type Pair struct {
	Key   string
	Value string
}

// Resolve orders entries so that, for a key present in several scopes, the
// highest precedence occurrence comes last. Order inside a scope is kept and
// duplicates are never dropped. Empty values count as absent.
func Resolve(entries []Entry, log logger.Logger) []Pair {
	if log == nil {
		log = logger.Nop()
	}

	var buckets [scopeCount][]Pair
	for _, e := range entries {
		if e.Value == "" {
			log.Info("ignoring configuration key %q in %s scope because its value is empty", e.Key, e.Scope)
			continue
		}
		if e.Scope < 0 || e.Scope >= scopeCount {
			continue
		}
		buckets[e.Scope] = append(buckets[e.Scope], Pair{Key: e.Key, Value: e.Value})
	}

	out := make([]Pair, 0, len(entries))
	for _, bucket := range buckets {
		out = append(out, bucket...)
	}
	return out
}
