// ABOUTME: Error taxonomy for capability failures
// ABOUTME: ConfigError, SynthesisError and ModError with wrapping support
package resource

import "fmt"

// ConfigError reports a malformed or missing configuration field. It is
// always local to one capability instance.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Reason)
	}
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Reason)
}

// SynthesisError reports an internal failure of a concrete Resource.
type SynthesisError struct {
	Resource string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("resource %q: %v", e.Resource, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// ModError reports an internal failure of a concrete Mod, such as an
// operation undefined for the input's channel layout.
type ModError struct {
	Mod string
	Err error
}

func (e *ModError) Error() string {
	return fmt.Sprintf("mod %q: %v", e.Mod, e.Err)
}

func (e *ModError) Unwrap() error { return e.Err }
