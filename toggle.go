package webvalve

// Toggle is the state of an explicit per-service override.
type Toggle int

const (
	// ToggleUnset means the variable is absent, empty or holds an unrecognized token.
	ToggleUnset Toggle = iota
	// ToggleEnabled is set by one of "1", "t", "true".
	ToggleEnabled
	// ToggleDisabled is set by one of "0", "f", "false".
	ToggleDisabled
)

// ParseToggle maps a raw environment value to a Toggle. Matching is exact and case-sensitive.
func ParseToggle(raw string) Toggle {
	switch raw {
	case "1", "t", "true":
		return ToggleEnabled
	case "0", "f", "false":
		return ToggleDisabled
	default:
		return ToggleUnset
	}
}

func (t Toggle) String() string {
	switch t {
	case ToggleEnabled:
		return "enabled"
	case ToggleDisabled:
		return "disabled"
	default:
		return "unset"
	}
}
