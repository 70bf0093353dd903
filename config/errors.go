package config

import "fmt"

// ConfigurationError is returned for scenario parameters that cannot describe a valid run, e.g. a negative cost or a
// minimum load outside of [0,1].
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// Invalid returns a ConfigurationError for the given field.
func Invalid(field string, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
