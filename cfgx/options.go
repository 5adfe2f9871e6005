package cfgx

import (
	"errors"

	"github.com/go-viper/mapstructure/v2"
)

// Option configures a single Build call.
type Option[T any] func(*decoder[T])

// Validator runs after decoding.
type Validator[T any] func(*T) error

// WithDefaults decodes input over a deep copy of value.
func WithDefaults[T any](value T) Option[T] {
	return WithDefaultFunc(func() (T, error) { return value, nil })
}

// WithDefaultFunc produces the defaults value lazily.
func WithDefaultFunc[T any](fn func() (T, error)) Option[T] {
	return func(d *decoder[T]) {
		d.seed = fn
	}
}

// WithDecodeHooks adds hooks that run after the default ones.
func WithDecodeHooks[T any](hooks ...mapstructure.DecodeHookFunc) Option[T] {
	return func(d *decoder[T]) {
		for _, h := range hooks {
			if h != nil {
				d.hooks = append(d.hooks, h)
			}
		}
	}
}

// WithoutDefaultHooks drops DefaultDecodeHooks.
func WithoutDefaultHooks[T any]() Option[T] {
	return func(d *decoder[T]) {
		d.defaultHooks = false
	}
}

// WithStrictKeys rejects input keys that T does not declare.
func WithStrictKeys[T any]() Option[T] {
	return func(d *decoder[T]) {
		d.config.ErrorUnused = true
	}
}

// WithWeakTyping toggles mapstructure weak typing, on by default.
func WithWeakTyping[T any](enabled bool) Option[T] {
	return func(d *decoder[T]) {
		d.config.WeaklyTypedInput = enabled
	}
}

// WithTagName sets the struct tag read while decoding, "mapstructure" by
// default. Parser values use "opt".
func WithTagName[T any](tag string) Option[T] {
	return func(d *decoder[T]) {
		if tag != "" {
			d.config.TagName = tag
		}
	}
}

// WithValidator sets the validator. Registering a second one is an error.
func WithValidator[T any](validator Validator[T]) Option[T] {
	return func(d *decoder[T]) {
		switch {
		case validator == nil:
		case d.validate != nil:
			d.optionError(errors.New("validator already registered"))
		default:
			d.validate = validator
		}
	}
}

// WithValidatorFunc is WithValidator for value receivers.
func WithValidatorFunc[T any](validator func(T) error) Option[T] {
	if validator == nil {
		return WithValidator[T](nil)
	}
	return WithValidator(func(cfg *T) error {
		return validator(*cfg)
	})
}

// WithOptionError lets wrappers fail the Build with their own option error.
func WithOptionError[T any](err error) Option[T] {
	return func(d *decoder[T]) {
		if err != nil {
			d.optionError(err)
		}
	}
}
