package rules

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every *ConfigurationError under errors.Is.
var ErrConfiguration = errors.New("configuration error")

// Kind classifies a ConfigurationError.
type Kind string

const (
	KindModuleRoot   Kind = "module-root"
	KindRelativePath Kind = "relative-path"
	KindPlatform     Kind = "platform"
	KindArchitecture Kind = "architecture"
	KindProperty     Kind = "property"
	KindDescriptor   Kind = "descriptor"
)

// ConfigurationError is returned for every resolution failure. Resolution is
// deterministic, so a ConfigurationError is fatal for the build pass.
type ConfigurationError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConfiguration) true for any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErr(kind Kind, path string, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Kind: kind, Path: path, Err: fmt.Errorf(format, args...)}
}
