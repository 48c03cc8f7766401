package manifest

import (
	"fmt"

	"github.com/modrules-dev/modrules/internal/rules"
)

// Load returns the module descriptor at path, or the built-in default when
// path is empty. Files must pass schema validation, the descriptor
// invariants and their requires constraint.
func Load(path, toolVersion string) (rules.ModuleDescriptor, error) {
	if path == "" {
		return rules.DefaultDescriptor(), nil
	}

	result, err := ValidateFile(path)
	if err != nil {
		return rules.ModuleDescriptor{}, err
	}
	if !result.Valid {
		return rules.ModuleDescriptor{}, &InvalidError{Path: path, Issues: result.Issues}
	}

	f, err := ParseFile(path)
	if err != nil {
		return rules.ModuleDescriptor{}, err
	}
	if err := CheckRequires(f.Requires, toolVersion); err != nil {
		return rules.ModuleDescriptor{}, fmt.Errorf("descriptor %s: %w", path, err)
	}

	desc, err := f.ToDescriptor()
	if err != nil {
		return rules.ModuleDescriptor{}, fmt.Errorf("descriptor %s: %w", path, err)
	}
	return desc, nil
}

// InvalidError is returned by Load when a file fails schema validation.
type InvalidError struct {
	Path   string
	Issues []ValidationIssue
}

func (e *InvalidError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("descriptor %s is invalid", e.Path)
	}
	first := e.Issues[0]
	msg := fmt.Sprintf("descriptor %s is invalid: %s %s", e.Path, first.Path, first.Message)
	if n := len(e.Issues) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}
