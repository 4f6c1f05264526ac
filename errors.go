package webvalve

import (
	"fmt"
)

// DefaultRegisterHint is the registration call quoted in ConfigurationError messages.
const DefaultRegisterHint = "WebValve.register"

// ValidationError is returned when registration input is invalid.
type ValidationError struct {
	ClassName string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("webvalve: invalid service %q: %s", e.ClassName, e.Reason)
}

// ConfigurationError is returned when a service URL can't be resolved.
// Message is relied upon by users for diagnostics, so it is returned by Error verbatim.
type ConfigurationError struct {
	ClassName string
	Message   string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func missingURLError(className, envVar, hint string) *ConfigurationError {
	return &ConfigurationError{
		ClassName: className,
		Message: fmt.Sprintf(
			"There is no URL defined for %s.\nConfigure one by setting the ENV variable %q\nor by using %s %q, url: \"http://something.dev\"\n",
			className, envVar, hint, className,
		),
	}
}

func invalidURLError(className, rawURL string, err error) *ConfigurationError {
	return &ConfigurationError{
		ClassName: className,
		Message:   fmt.Sprintf("Invalid URL %q defined for %s: %s", rawURL, className, err),
		Err:       err,
	}
}

// DuplicateRegistrationError is returned when a class name is registered twice in one Registry.
type DuplicateRegistrationError struct {
	ClassName string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("webvalve: service %q is already registered", e.ClassName)
}
