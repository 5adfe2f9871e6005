package optparse

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/mitchellh/copystructure"
)

// DefaultGroup is the group of options declared without one. Its heading is
// not rendered in help output.
const DefaultGroup = "Options"

// Group is a named, ordered set of options used for help output.
type Group struct {
	Name    string
	Options []Option
}

// Registry is the immutable table of recognized options.
type Registry struct {
	options []Option
	byKey   map[string]int
	byShort map[string]int
	byDest  map[string]int
	groups  []string
}

// NewRegistry validates options and indexes them by key, short flag and
// destination. Keys, short flags and destinations must be unique.
func NewRegistry(options ...Option) (*Registry, error) {
	r := &Registry{
		options: make([]Option, 0, len(options)),
		byKey:   make(map[string]int, len(options)),
		byShort: make(map[string]int),
		byDest:  make(map[string]int, len(options)),
	}
	seenGroups := map[string]bool{}

	for i, opt := range options {
		if opt.Dest == "" {
			opt.Dest = defaultDest(opt.Key)
		}
		if opt.Group == "" {
			opt.Group = DefaultGroup
		}
		if err := validateOption(opt); err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "invalid option").
				WithTextCode("INVALID_OPTION").
				WithMetadata(map[string]any{
					"option_index": i,
					"option_key":   opt.Key,
				})
		}
		def, err := cloneValue(opt.Default)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "option default cannot be copied").
				WithTextCode("UNCOPYABLE_DEFAULT").
				WithMetadata(map[string]any{
					"option_key": opt.Key,
				})
		}
		opt.Default = def

		if _, ok := r.byKey[opt.Key]; ok {
			return nil, duplicateError("DUPLICATE_OPTION_KEY", "key", opt.Key)
		}
		if _, ok := r.byDest[opt.Dest]; ok {
			return nil, duplicateError("DUPLICATE_OPTION_DEST", "dest", opt.Dest)
		}
		if opt.Short != "" {
			if _, ok := r.byShort[opt.Short]; ok {
				return nil, duplicateError("DUPLICATE_OPTION_SHORT", "short", opt.Short)
			}
			r.byShort[opt.Short] = len(r.options)
		}

		r.byKey[opt.Key] = len(r.options)
		r.byDest[opt.Dest] = len(r.options)
		r.options = append(r.options, opt)

		if !seenGroups[opt.Group] {
			seenGroups[opt.Group] = true
			r.groups = append(r.groups, opt.Group)
		}
	}

	return r, nil
}

// MustRegistry is NewRegistry for static tables, it panics on error.
func MustRegistry(options ...Option) *Registry {
	r, err := NewRegistry(options...)
	if err != nil {
		panic(err)
	}
	return r
}

func validateOption(opt Option) error {
	switch {
	case opt.Key == "":
		return errors.New("option key is required", errors.CategoryBadInput).
			WithTextCode("EMPTY_OPTION_KEY")
	case strings.HasPrefix(opt.Key, "-") || strings.ContainsAny(opt.Key, ". \t\n="):
		return errors.New("option key must be a bare name without dashes prefix, dots, spaces or '='", errors.CategoryBadInput).
			WithTextCode("MALFORMED_OPTION_KEY")
	case strings.Contains(opt.Dest, "."):
		return errors.New("option dest cannot contain dots", errors.CategoryBadInput).
			WithTextCode("MALFORMED_OPTION_DEST")
	case opt.Short != "" && len(opt.Short) != 1:
		return errors.New("short flag must be a single character", errors.CategoryBadInput).
			WithTextCode("MALFORMED_SHORT_FLAG")
	case !opt.Action.valid():
		return errors.New("unknown option action", errors.CategoryBadInput).
			WithTextCode("UNKNOWN_ACTION").
			WithMetadata(map[string]any{"action": int(opt.Action)})
	case opt.Action == ActionCallback && opt.Callback == nil:
		return errors.New("callback option requires a handler", errors.CategoryBadInput).
			WithTextCode("MISSING_CALLBACK")
	}
	return nil
}

func duplicateError(code, field, value string) error {
	return errors.New("duplicate option "+field, errors.CategoryValidation).
		WithTextCode(code).
		WithMetadata(map[string]any{
			field: value,
		})
}

// Lookup finds an option by its key.
func (r *Registry) Lookup(key string) (Option, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Option{}, false
	}
	return r.option(i), true
}

// LookupDest finds an option by its destination.
func (r *Registry) LookupDest(dest string) (Option, bool) {
	i, ok := r.byDest[dest]
	if !ok {
		return Option{}, false
	}
	return r.option(i), true
}

// Options returns every option in declaration order.
func (r *Registry) Options() []Option {
	out := make([]Option, len(r.options))
	for i := range r.options {
		out[i] = r.option(i)
	}
	return out
}

// option returns the i-th option with its own copy of the default, so
// callers never reach the registry's values.
func (r *Registry) option(i int) Option {
	opt := r.options[i]
	opt.Default = copystructure.Must(cloneValue(opt.Default))
	return opt
}

// Groups returns options grouped by name, in order of first appearance
// unless rearranged by InsertGroup.
func (r *Registry) Groups() []Group {
	groups := make([]Group, 0, len(r.groups))
	for _, name := range r.groups {
		g := Group{Name: name}
		for i, opt := range r.options {
			if opt.Group == name {
				g.Options = append(g.Options, r.option(i))
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// InsertGroup returns a new registry holding r's options plus options
// filed under the named group, with that group moved to position idx among
// the named groups. The default group always renders first and cannot be
// moved. idx is clamped to the valid range. r is left unchanged.
func (r *Registry) InsertGroup(idx int, name string, options ...Option) (*Registry, error) {
	if name == "" || name == DefaultGroup {
		return nil, errors.New("group name must be set and differ from the default group", errors.CategoryBadInput).
			WithTextCode("INVALID_OPTION_GROUP").
			WithMetadata(map[string]any{"group": name})
	}

	all := r.Options()
	for _, opt := range options {
		opt.Group = name
		all = append(all, opt)
	}
	next, err := NewRegistry(all...)
	if err != nil {
		return nil, err
	}

	hasDefault := false
	named := make([]string, 0, len(r.groups))
	for _, g := range r.groups {
		switch g {
		case DefaultGroup:
			hasDefault = true
		case name:
		default:
			named = append(named, g)
		}
	}

	found := false
	for _, g := range next.groups {
		if g == name {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.New("option group has no options", errors.CategoryBadInput).
			WithTextCode("EMPTY_OPTION_GROUP").
			WithMetadata(map[string]any{"group": name})
	}

	idx = max(0, min(idx, len(named)))
	named = append(named[:idx], append([]string{name}, named[idx:]...)...)
	if hasDefault {
		named = append([]string{DefaultGroup}, named...)
	}
	next.groups = named
	return next, nil
}

// Defaults returns a deep copy of the declared defaults keyed by
// destination.
func (r *Registry) Defaults() map[string]any {
	out := make(map[string]any, len(r.options))
	for i, opt := range r.options {
		out[opt.Dest] = r.option(i).Default
	}
	return out
}
