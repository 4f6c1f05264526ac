package webvalve

import (
	"strings"
	"unicode"
)

// NamingScheme derives the short service name from a registered class name.
// The service name is the base of the environment variables that control the service:
// "dummy" is controlled by DUMMY_ENABLED and DUMMY_API_URL.
//
// Implementations should be pure functions of the class name.
type NamingScheme interface {
	ServiceName(className string) string
}

// NamingSchemeFunc is a convenience type that implements NamingScheme interface.
type NamingSchemeFunc func(className string) string

func (f NamingSchemeFunc) ServiceName(className string) string {
	return f(className)
}

// DefaultNamingScheme follows the "FakeTwitterAPI" -> "twitter_api" convention:
// the module path is dropped, CamelCase is turned into snake_case, the "fake_" prefix is removed
// and every character that can't be part of an environment variable name is stripped.
func DefaultNamingScheme() NamingScheme {
	return NamingSchemeFunc(ServiceNameFromClass)
}

// ServiceNameFromClass implements DefaultNamingScheme.
func ServiceNameFromClass(className string) string {
	name := demodulize(strings.TrimSpace(className))
	name = underscore(name)
	name = strings.TrimPrefix(name, "fake_")
	if name == "fake" {
		name = ""
	}
	return stripNonIdentifier(name)
}

// EnvVarName builds the name of the environment variable with given suffix for a service,
// e.g. EnvVarName("dummy", "API_URL") == "DUMMY_API_URL".
func EnvVarName(serviceName, suffix string) string {
	return strings.ToUpper(stripNonIdentifier(serviceName)) + "_" + suffix
}

func demodulize(name string) string {
	if i := strings.LastIndexAny(name, ":./"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func underscore(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextIsLower) {
				b.WriteRune('_')
			}
		}
		if r == '-' || r == ' ' {
			r = '_'
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func stripNonIdentifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "_")
}
