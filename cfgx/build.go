package cfgx

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mitchellh/copystructure"
)

// Stage names the step of Build that failed.
type Stage string

const (
	StageOption   Stage = "option"
	StageDefaults Stage = "defaults"
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
)

var (
	// ErrOption matches a misconfigured Build option.
	ErrOption = errors.New("cfgx: invalid option")
	// ErrDefaults matches failures producing or cloning the defaults value.
	ErrDefaults = errors.New("cfgx: defaults failed")
	// ErrDecode matches mapstructure failures.
	ErrDecode = errors.New("cfgx: decode failed")
	// ErrValidate matches errors returned by the validator.
	ErrValidate = errors.New("cfgx: validation failed")
)

var stageSentinels = map[Stage]error{
	StageOption:   ErrOption,
	StageDefaults: ErrDefaults,
	StageDecode:   ErrDecode,
	StageValidate: ErrValidate,
}

// StageError reports the stage a Build failed in. It matches the stage
// sentinel and the wrapped cause with errors.Is.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("cfgx: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) Is(target error) bool {
	return stageSentinels[e.Stage] == target
}

func fail(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// decoder holds the Build settings collected from options.
type decoder[T any] struct {
	seed         func() (T, error)
	validate     Validator[T]
	hooks        []mapstructure.DecodeHookFunc
	defaultHooks bool
	config       mapstructure.DecoderConfig
	err          error
}

func (d *decoder[T]) optionError(err error) {
	if d.err == nil {
		d.err = fail(StageOption, err)
	}
}

// Build decodes input, usually the map of resolved option values, into T.
// Defaults are deep copied first so the caller's value is never mutated.
// A nil input only applies defaults and the validator.
func Build[T any](input any, opts ...Option[T]) (T, error) {
	var zero T

	d := &decoder[T]{
		defaultHooks: true,
		config: mapstructure.DecoderConfig{
			TagName:          "mapstructure",
			WeaklyTypedInput: true,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	if d.err != nil {
		return zero, d.err
	}

	out, err := d.defaults()
	if err != nil {
		return zero, fail(StageDefaults, err)
	}

	if input != nil {
		if err := d.decode(input, &out); err != nil {
			return zero, fail(StageDecode, err)
		}
	}

	if d.validate != nil {
		if err := d.validate(&out); err != nil {
			return zero, fail(StageValidate, err)
		}
	}

	return out, nil
}

func (d *decoder[T]) defaults() (T, error) {
	var zero T
	if d.seed == nil {
		return zero, nil
	}
	v, err := d.seed()
	if err != nil {
		return zero, err
	}
	copied, err := copystructure.Copy(v)
	if err != nil {
		return zero, fmt.Errorf("clone defaults: %w", err)
	}
	out, ok := copied.(T)
	if !ok {
		return zero, fmt.Errorf("clone defaults: got %T", copied)
	}
	return out, nil
}

func (d *decoder[T]) decode(input any, out *T) error {
	cfg := d.config
	cfg.Result = target(out)

	var hooks []mapstructure.DecodeHookFunc
	if d.defaultHooks {
		hooks = append(hooks, DefaultDecodeHooks()...)
	}
	hooks = append(hooks, d.hooks...)
	if len(hooks) > 0 {
		cfg.DecodeHook = mapstructure.ComposeDecodeHookFunc(hooks...)
	}

	dec, err := mapstructure.NewDecoder(&cfg)
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// target returns the value mapstructure decodes into. Pointer types are
// allocated so Build[*Config] works like Build[Config].
func target[T any](out *T) any {
	v := reflect.ValueOf(out).Elem()
	if v.Kind() != reflect.Pointer {
		return out
	}
	if v.IsNil() {
		v.Set(reflect.New(v.Type().Elem()))
	}
	return v.Interface()
}
