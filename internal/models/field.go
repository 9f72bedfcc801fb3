package models

import (
	"fmt"
	"regexp"
)

// DateLayout is the calendar date format used by date fields.
const DateLayout = "2006-01-02"

// FieldIDPattern matches field identifiers such as C1T02E01 or C3T05E02_1.
// The leading CnTm part names the owning table.
var FieldIDPattern = regexp.MustCompile(`^([A-Z][0-9]+T[0-9]+)E[0-9]+(?:_[A-Za-z0-9]+)*$`)

// TableIDOf extracts the owning table identifier from a field identifier.
func TableIDOf(fieldID string) (string, bool) {
	m := FieldIDPattern.FindStringSubmatch(fieldID)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsFieldID reports whether s follows the field identifier pattern.
func IsFieldID(s string) bool {
	return FieldIDPattern.MatchString(s)
}

// FieldType is the declared type tag of a field.
type FieldType string

const (
	FieldChoice    FieldType = "choice"
	FieldBoolean   FieldType = "boolean"
	FieldNumber    FieldType = "number"
	FieldText      FieldType = "text"
	FieldDate      FieldType = "date"
	FieldComputed  FieldType = "computed"
	FieldComposite FieldType = "composite"
)

// ResolveKind maps a declared type tag to the value shape its answers take.
// A choice field accepting several options is list-typed.
func ResolveKind(t FieldType, multiple bool) (ValueKind, error) {
	switch t {
	case FieldChoice:
		if multiple {
			return KindList, nil
		}
		return KindString, nil
	case FieldBoolean:
		return KindBool, nil
	case FieldNumber, FieldComputed:
		return KindNumber, nil
	case FieldText, FieldDate:
		return KindString, nil
	case FieldComposite:
		return KindObject, nil
	default:
		return KindNull, fmt.Errorf("unknown field type %q", t)
	}
}

// Option is one selectable answer of a choice field.
type Option struct {
	ID    string
	Label string
	Score float64
}

// Condition shows a field only when a sibling field holds Value.
type Condition struct {
	Field string
	Value Value
}

// DisplayCondition shows a field when the driver field's value is one of Triggers.
type DisplayCondition struct {
	Driver   string
	Triggers []string
}

// Subquestion is shown when any of its sibling fields is answered.
type Subquestion struct {
	ID       string
	Label    string
	Siblings []string
}

// Validation holds the declared bounds of a field. Nil pointers are unbounded.
type Validation struct {
	Required  bool
	Min       *float64
	Max       *float64
	MinLength *int
	MaxLength *int
	MinSelect *int
	MaxSelect *int
}

// FieldDefinition is one answerable unit of a table schema.
type FieldDefinition struct {
	ID               string
	Type             FieldType
	Kind             ValueKind // resolved from Type at load time
	Label            string
	Unit             string
	Multiple         bool
	Options          []Option
	Condition        *Condition
	DisplayCondition *DisplayCondition
	Validation       *Validation
	Subquestions     []Subquestion

	// Constat tables authored without a mapping list carry their rules inline.
	Constat    string
	Expression string
	Section    string
}

// Option returns the option with the given id.
func (f FieldDefinition) Option(id string) (Option, bool) {
	for _, opt := range f.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// HasInlineRule reports whether the field declares a constat condition.
func (f FieldDefinition) HasInlineRule() bool {
	return f.Constat != "" && f.Expression != ""
}
