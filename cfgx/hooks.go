package cfgx

import (
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// DefaultDecodeHooks are installed by Build unless WithoutDefaultHooks is
// given.
func DefaultDecodeHooks() []mapstructure.DecodeHookFunc {
	return []mapstructure.DecodeHookFunc{
		DurationHook(),
		FieldsHook(),
		TextUnmarshalerHook(),
	}
}

// DurationHook decodes "1m30s" style strings into time.Duration.
func DurationHook() mapstructure.DecodeHookFunc {
	return mapstructure.StringToTimeDurationHookFunc()
}

// FieldsHook splits a string on whitespace for []string targets, the way
// append options are written in configuration files: "a b  c" -> [a b c].
func FieldsHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() == reflect.String && to.Kind() == reflect.Slice && to.Elem().Kind() == reflect.String {
			return strings.Fields(reflect.ValueOf(data).String()), nil
		}
		return data, nil
	}
}

// TextUnmarshalerHook decodes strings into encoding.TextUnmarshaler targets.
func TextUnmarshalerHook() mapstructure.DecodeHookFunc {
	return mapstructure.TextUnmarshallerHookFunc()
}
