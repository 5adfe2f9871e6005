package config

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-cliconf/koanf/solvers"
	"github.com/goliatone/go-cliconf/logger"
	"github.com/goliatone/go-cliconf/redact"
	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/v2"
)

var (
	DefaultDelimiter   = "."
	DefaultLoadTimeout = 30 * time.Second
)

const (
	// SectionGlobal holds settings shared by every command.
	SectionGlobal = "global"
	// SectionEnv holds settings read from the process environment.
	SectionEnv = ":env:"
)

// Item is a single raw setting. Section is either SectionGlobal, SectionEnv
// or the name of a command.
type Item struct {
	Section string
	Key     string
	Value   string
}

// Name returns the dotted section.key form.
func (i Item) Name() string {
	return i.Section + DefaultDelimiter + i.Key
}

// Store loads configuration sections from its sources and exposes them as raw
// string items. Each Load starts from an empty tree.
type Store struct {
	K *koanf.Koanf

	mu          sync.Mutex
	sources     []Source
	builders    []SourceBuilder
	solvers     []solvers.ConfigSolver
	isolated    bool
	strictMerge bool
	loadTimeout time.Duration
	delimiter   string
	logger      logger.Logger
	loaded      bool
}

func New(opts ...Option) (*Store, error) {
	s := &Store{
		delimiter:   DefaultDelimiter,
		loadTimeout: DefaultLoadTimeout,
		logger:      logger.Nop(),
		solvers: []solvers.ConfigSolver{
			solvers.NewVariablesSolver("${", "}"),
			solvers.NewURISolver("@", "://"),
		},
	}

	for i, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(s); err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid store option").
				WithTextCode("INVALID_STORE_OPTION").
				WithMetadata(map[string]any{
					"option_index": i,
				})
		}
	}

	s.newTree()
	return s, nil
}

func (s *Store) WithSource(builders ...SourceBuilder) *Store {
	for _, b := range builders {
		if b != nil {
			s.builders = append(s.builders, b)
		}
	}
	return s
}

func (s *Store) WithSolver(slvrs ...solvers.ConfigSolver) *Store {
	s.solvers = append(s.solvers, slvrs...)
	return s
}

// WithSolvers replaces the solver list, allowing explicit ordering. Calling it
// with no arguments disables solving.
func (s *Store) WithSolvers(slvrs ...solvers.ConfigSolver) *Store {
	s.solvers = append([]solvers.ConfigSolver{}, slvrs...)
	return s
}

// WithIsolated makes Load skip environment sources.
func (s *Store) WithIsolated(isolated bool) *Store {
	s.isolated = isolated
	return s
}

func (s *Store) WithStrictMerge() *Store {
	s.strictMerge = true
	return s
}

func (s *Store) WithTimeout(timeout time.Duration) *Store {
	s.loadTimeout = timeout
	return s
}

func (s *Store) WithLogger(l logger.Logger) *Store {
	if l != nil {
		s.logger = l
	}
	return s
}

func (s *Store) newTree() {
	s.K = koanf.NewWithConf(koanf.Conf{
		Delim:       s.delimiter,
		StrictMerge: s.strictMerge,
	})
}

// Load rebuilds the tree from every source in priority order. Sources with a
// higher priority are loaded later and override earlier values.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.loadTimeout)
		defer cancel()
	}

	s.newTree()
	s.loaded = false

	sources := make([]Source, 0, len(s.builders)+len(s.sources))
	sources = append(sources, s.sources...)
	for i, build := range s.builders {
		src, err := build(s)
		if err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "failed to create source").
				WithTextCode("SOURCE_CREATION_FAILED").
				WithMetadata(map[string]any{
					"builder_index":  i,
					"total_builders": len(s.builders),
				})
		}
		sources = append(sources, src)
	}

	for i, src := range sources {
		if err := src.Validate(); err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid source type").
				WithTextCode("INVALID_SOURCE_TYPE").
				WithMetadata(map[string]any{
					"source_type":  string(src.Type()),
					"source_index": i,
				})
		}
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Priority() < sources[j].Priority()
	})

	for i, src := range sources {
		if s.isolated && src.Type() == SourceTypeEnv {
			s.logger.Debug("isolated mode, skipping %s source", src.Type())
			continue
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "configuration load interrupted").
				WithTextCode("CONFIG_LOAD_CANCELLED")
		}
		s.logger.Debug("loading %s source (priority %d)", src.Type(), src.Priority())
		if err := src.Load(ctx, s.K); err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "failed to load configuration from source").
				WithTextCode("CONFIG_LOAD_FAILED").
				WithMetadata(map[string]any{
					"source_type":   string(src.Type()),
					"source_index":  i,
					"total_sources": len(sources),
				})
		}
	}

	for _, solver := range s.solvers {
		if solver != nil {
			solver.Solve(s.K)
		}
	}

	s.loaded = true
	return nil
}

// Items returns every leaf of the loaded tree as a raw string, ordered by
// section and then key. Items of a store that was never loaded is empty.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil
	}

	var items []Item
	for _, section := range s.K.MapKeys("") {
		sub := s.K.Cut(section)
		all := sub.All()
		keys := make([]string, 0, len(all))
		for key := range all {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			item := Item{Section: section, Key: key, Value: rawString(all[key])}
			s.logger.Debug("item %s=%q", item.Name(), redact.Text(item.Value))
			items = append(items, item)
		}
	}
	return items
}

// Sections lists the top level sections present after Load.
func (s *Store) Sections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}
	return s.K.MapKeys("")
}

// rawString renders a parsed value the way it would have been written in an
// untyped file. Lists are space separated so append options can split them.
func rawString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			parts = append(parts, rawString(p))
		}
		return strings.Join(parts, " ")
	case []string:
		return strings.Join(val, " ")
	default:
		return fmt.Sprintf("%v", val)
	}
}
