package wildlife

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrPhaseCoverageGap = errors.New("phase coverage gap")
)

// NotFoundError reports a species, model or rule that does not exist.
// Suggestions holds close species ids when the lookup looked like a typo.
type NotFoundError struct {
	Kind        string
	ID          string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
	if len(e.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError is returned when a rule, model or weight update breaks a bound.
// Values are rejected, never clamped.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// PhaseCoverageGapError means the model exists but none of its phases covers the date.
type PhaseCoverageGapError struct {
	Species string
	Region  string
	Date    time.Time
}

func (e *PhaseCoverageGapError) Error() string {
	return fmt.Sprintf("no phase of %s/%s covers %s", e.Species, e.Region, e.Date.Format(time.DateOnly))
}

func (e *PhaseCoverageGapError) Is(target error) bool {
	return target == ErrPhaseCoverageGap
}

func notFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}
