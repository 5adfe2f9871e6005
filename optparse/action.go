package optparse

// Action decides how a raw value becomes an option value.
type Action int

const (
	// ActionPlain stores the value after the option's ValueFunc, if any.
	ActionPlain Action = iota
	// ActionFlagTrue is a boolean toggle, the CLI flag stores true.
	ActionFlagTrue
	// ActionFlagFalse is a boolean toggle, the CLI flag stores false.
	ActionFlagFalse
	// ActionCount is a non-negative counter, repeated CLI flags increment it.
	ActionCount
	// ActionAppend collects a list. Configuration values are whitespace split.
	ActionAppend
	// ActionCallback hands the converted value to the option's CallbackFunc,
	// which records its result in the EvalContext.
	ActionCallback
)

func (a Action) String() string {
	switch a {
	case ActionPlain:
		return "plain"
	case ActionFlagTrue:
		return "flag_true"
	case ActionFlagFalse:
		return "flag_false"
	case ActionCount:
		return "count"
	case ActionAppend:
		return "append"
	case ActionCallback:
		return "callback"
	}
	return "unknown"
}

func (a Action) valid() bool {
	return a >= ActionPlain && a <= ActionCallback
}
