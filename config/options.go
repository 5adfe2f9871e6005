package config

import (
	"time"

	"github.com/goliatone/go-cliconf/koanf/solvers"
	"github.com/goliatone/go-cliconf/logger"
	"github.com/goliatone/go-errors"
)

type Option func(s *Store) error

func WithSources(builders ...SourceBuilder) Option {
	return func(s *Store) error {
		for i, build := range builders {
			if build == nil {
				continue
			}
			src, err := build(s)
			if err != nil {
				return errors.Wrap(err, errors.CategoryOperation, "failed to create source").
					WithTextCode("SOURCE_CREATION_FAILED").
					WithMetadata(map[string]any{
						"builder_index":  i,
						"total_builders": len(builders),
					})
			}
			s.sources = append(s.sources, src)
		}
		return nil
	}
}

func WithSolvers(slvrs ...solvers.ConfigSolver) Option {
	return func(s *Store) error {
		s.solvers = append([]solvers.ConfigSolver{}, slvrs...)
		return nil
	}
}

func WithIsolated(isolated bool) Option {
	return func(s *Store) error {
		s.isolated = isolated
		return nil
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *Store) error {
		if timeout < 0 {
			return errors.New("load timeout cannot be negative", errors.CategoryBadInput).
				WithTextCode("NEGATIVE_TIMEOUT")
		}
		s.loadTimeout = timeout
		return nil
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Store) error {
		if l != nil {
			s.logger = l
		}
		return nil
	}
}
