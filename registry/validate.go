package registry

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// FieldError represents a validation failure for a specific field.
type FieldError struct {
	Field   string // Field path (e.g., "fields[0]")
	Message string // Human-readable error message
}

func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []*FieldError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s", err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying errors for errors.Is/As compatibility.
func (e *ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add appends a validation error.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &FieldError{Field: field, Message: message})
}

// HasErrors returns true if any errors were collected.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if no errors, otherwise returns self.
func (e *ValidationErrors) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// ErrInvalidName is returned for register, field or phase names that cannot
// be placed in a hostname or URL path.
var ErrInvalidName = errors.New("invalid name")

// Names become DNS labels, so they follow RFC 1123 label rules in lower case.
var namePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// ValidateName checks that a register name is usable as a hostname label.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Field names only appear in URL paths, so they may use any case and
// underscores, but nothing that changes the path.
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]{0,127}$`)

// ValidateFieldName checks that a field name is usable as a path segment.
func ValidateFieldName(name string) error {
	if !fieldNamePattern.MatchString(name) || name == ".." {
		return fmt.Errorf("%w: field %q", ErrInvalidName, name)
	}
	return nil
}

// ValidatePhase checks that a phase is usable as a hostname label.
func ValidatePhase(phase string) error {
	if !namePattern.MatchString(phase) {
		return fmt.Errorf("%w: phase %q", ErrInvalidName, phase)
	}
	return nil
}

// Validate checks that the metadata can back a register.
func (m *RegisterMetadata) Validate() error {
	var errs ValidationErrors

	if m.Fields == nil {
		errs.Add("fields", "required field is missing")
	}

	seen := make(map[string]bool, len(m.Fields))
	for i, name := range m.Fields {
		path := fmt.Sprintf("fields[%d]", i)
		if ValidateFieldName(name) != nil {
			errs.Add(path, fmt.Sprintf("invalid field name %q", name))
			continue
		}
		if seen[name] {
			errs.Add(path, fmt.Sprintf("duplicate field %q", name))
		}
		seen[name] = true
	}

	return errs.ToError()
}

// Validate checks the field metadata for values the client relies on.
func (m *FieldMetadata) Validate() error {
	var errs ValidationErrors

	switch m.Cardinality {
	case "", "1", CardinalityMany:
	default:
		errs.Add("cardinality", fmt.Sprintf("expected '1' or 'n', got %q", m.Cardinality))
	}

	return errs.ToError()
}
