package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrSchemaNotFound marks a missing or unparseable schema document.
	ErrSchemaNotFound = errors.New("schema not found")
	// ErrExpressionEvaluation marks a malformed or type-mismatched condition.
	ErrExpressionEvaluation = errors.New("expression evaluation failed")
	// ErrInvalidMeasurement marks a zero, negative or missing denominator.
	ErrInvalidMeasurement = errors.New("invalid measurement")
)

// SchemaError describes why a schema could not be loaded.
type SchemaError struct {
	TableID string
	Err     error
}

// Error implements the error interface for SchemaError.
func (e *SchemaError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("schema %s: %v", e.TableID, ErrSchemaNotFound)
	}
	return fmt.Sprintf("schema %s: %v: %v", e.TableID, ErrSchemaNotFound, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *SchemaError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSchemaNotFound}
	}
	return []error{ErrSchemaNotFound, e.Err}
}

// EvalError describes a condition that could not be evaluated.
type EvalError struct {
	Expression string
	Pos        int // byte offset, -1 when unknown
	Message    string
}

// Error implements the error interface for EvalError.
func (e *EvalError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%v: %s at offset %d in %q", ErrExpressionEvaluation, e.Message, e.Pos, e.Expression)
	}
	return fmt.Sprintf("%v: %s in %q", ErrExpressionEvaluation, e.Message, e.Expression)
}

// Unwrap returns ErrExpressionEvaluation.
func (e *EvalError) Unwrap() error {
	return ErrExpressionEvaluation
}

// ValidationError represents a single answer that violates its declared bounds.
type ValidationError struct {
	FieldID string `json:"field_id" yaml:"field_id"`
	Rule    string `json:"rule" yaml:"rule"`
	Message string `json:"message" yaml:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("field %s: %s - %s", e.FieldID, e.Rule, e.Message)
}

// ValidationReport maps field id to the violations found on it.
type ValidationReport map[string][]ValidationError

// Add records a violation.
func (r ValidationReport) Add(err ValidationError) {
	r[err.FieldID] = append(r[err.FieldID], err)
}

// HasErrors returns true if any field failed validation.
func (r ValidationReport) HasErrors() bool {
	return len(r) > 0
}

// Error returns an aggregated message, empty when there are no errors.
func (r ValidationReport) Error() string {
	if len(r) == 0 {
		return ""
	}
	var sb strings.Builder
	count := 0
	for _, errs := range r {
		count += len(errs)
	}
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", count))
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, err := range r[id] {
			sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
		}
	}
	return sb.String()
}
