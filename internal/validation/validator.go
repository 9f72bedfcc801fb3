// Package validation checks answers against the bounds their schema
// declares. Violations are collected per field into a models.ValidationReport;
// nothing here returns an error or stops at the first problem.
package validation

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/schema"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/visibility"
)

// Rule names reported in ValidationError.Rule.
const (
	RuleRequired  = "required"
	RuleType      = "type"
	RuleOption    = "option"
	RuleDate      = "date"
	RuleMin       = "min"
	RuleMax       = "max"
	RuleMinLength = "min_length"
	RuleMaxLength = "max_length"
	RuleMinSelect = "min_select"
	RuleMaxSelect = "max_select"
	RuleUnknown   = "unknown_field"
)

// Validate checks one table's answers. Hidden and computed fields are skipped.
func Validate(table *models.TableSchema, answers models.TableAnswers) models.ValidationReport {
	return validateTable(table, answers, models.EvaluationData{})
}

// validateTable is Validate with the rest of the evaluation in view, so that
// fields depending on another table's answers are shown or hidden correctly.
func validateTable(table *models.TableSchema, answers models.TableAnswers, data models.EvaluationData) models.ValidationReport {
	report := models.ValidationReport{}
	if table == nil || table.Placeholder {
		return report
	}

	scope := make(models.EvaluationData, len(data)+1)
	for id, a := range data {
		scope[id] = a
	}
	scope[table.ID] = answers

	for _, f := range table.Fields {
		if f.Type == models.FieldComputed || f.HasInlineRule() {
			continue
		}
		if !visibility.ShouldShowFieldIn(f, scope, table.ID) {
			continue
		}
		validateField(report, f, models.ValueOf(answers[f.ID]))
	}

	for id := range answers {
		if _, ok := table.Field(id); !ok && !isSubquestion(table, id) {
			report.Add(models.ValidationError{FieldID: id, Rule: RuleUnknown,
				Message: fmt.Sprintf("table %s has no field %s", table.ID, id)})
		}
	}
	return report
}

// ValidateData validates every answered table. Tables whose schema cannot be
// loaded are skipped; the store reports them.
func ValidateData(ctx context.Context, schemas schema.Loader, data models.EvaluationData) models.ValidationReport {
	report := models.ValidationReport{}
	for tableID, answers := range data {
		table, err := schemas.Load(ctx, tableID)
		if err != nil {
			continue
		}
		for id, errs := range validateTable(table, answers, data) {
			report[id] = append(report[id], errs...)
		}
	}
	return report
}

func isSubquestion(table *models.TableSchema, id string) bool {
	for _, f := range table.Fields {
		for _, sq := range f.Subquestions {
			if sq.ID == id {
				return true
			}
		}
	}
	return false
}

func isEmpty(v models.Value) bool {
	switch v.Kind() {
	case models.KindNull:
		return true
	case models.KindString:
		s, _ := v.AsString()
		return s == ""
	case models.KindList:
		return len(v.Items()) == 0
	}
	return false
}

func validateField(report models.ValidationReport, f models.FieldDefinition, v models.Value) {
	rules := f.Validation
	if rules == nil {
		rules = &models.Validation{}
	}
	fail := func(rule, format string, args ...any) {
		report.Add(models.ValidationError{FieldID: f.ID, Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	if isEmpty(v) {
		if rules.Required {
			fail(RuleRequired, "an answer is required")
		}
		return
	}
	if v.Kind() != f.Kind {
		fail(RuleType, "expected %s, got %s", f.Kind, v.Kind())
		return
	}

	switch f.Kind {
	case models.KindNumber:
		n, _ := v.AsNumber()
		if rules.Min != nil && n < *rules.Min {
			fail(RuleMin, "%v is below the minimum %v", n, *rules.Min)
		}
		if rules.Max != nil && n > *rules.Max {
			fail(RuleMax, "%v is above the maximum %v", n, *rules.Max)
		}

	case models.KindString:
		s, _ := v.AsString()
		switch f.Type {
		case models.FieldChoice:
			if _, ok := f.Option(s); !ok {
				fail(RuleOption, "%q is not an option", s)
			}
		case models.FieldDate:
			if _, err := time.Parse(models.DateLayout, s); err != nil {
				fail(RuleDate, "%q is not a %s date", s, models.DateLayout)
			}
		}
		length := utf8.RuneCountInString(s)
		if rules.MinLength != nil && length < *rules.MinLength {
			fail(RuleMinLength, "%d characters, at least %d required", length, *rules.MinLength)
		}
		if rules.MaxLength != nil && length > *rules.MaxLength {
			fail(RuleMaxLength, "%d characters, at most %d allowed", length, *rules.MaxLength)
		}

	case models.KindList:
		items := v.Items()
		for _, item := range items {
			id, ok := item.AsString()
			if !ok {
				fail(RuleType, "selection %s is not an option id", item)
				continue
			}
			if len(f.Options) > 0 {
				if _, ok := f.Option(id); !ok {
					fail(RuleOption, "%q is not an option", id)
				}
			}
		}
		if rules.MinSelect != nil && len(items) < *rules.MinSelect {
			fail(RuleMinSelect, "%d selected, at least %d required", len(items), *rules.MinSelect)
		}
		if rules.MaxSelect != nil && len(items) > *rules.MaxSelect {
			fail(RuleMaxSelect, "%d selected, at most %d allowed", len(items), *rules.MaxSelect)
		}
	}
}
