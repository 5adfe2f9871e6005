// Package cfgx decodes a flat map of resolved option values into a typed
// configuration struct.
//
// Build clones an optional defaults value, decodes the input over it with
// mapstructure and runs an optional validator. Each failure is reported as a
// *StageError wrapping one of ErrDefaults, ErrDecode, ErrValidate or ErrOption
// so callers can branch with errors.Is.
//
// Default decode hooks:
//   - DurationHook turns "5s" into time.Duration.
//   - FieldsHook splits whitespace separated strings into []string targets,
//     matching how append options are written in configuration files.
//   - TextUnmarshalerHook supports encoding.TextUnmarshaler targets.
package cfgx
