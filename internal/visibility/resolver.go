// Package visibility decides which fields and sub-questions a form shows.
//
// Every predicate is a pure function of the declared conditions and the
// current answers; it is cheap enough to run on every render.
package visibility

import (
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
)

// ShouldShowField reports whether field is visible given its table's answers.
//
// A field without conditions is always visible. A dependency condition holds
// when the dependency's value equals the declared value; list values are
// tested for membership and booleans compare by strict identity. A display
// condition holds when the driver's value (or any element of it) is one of
// the triggers. When both are declared both must hold.
//
// Only tableID's answers are visible here: a dependency owned by another
// table reads as unanswered unless answers happens to carry it. Use
// ShouldShowFieldIn when the whole evaluation data is at hand.
func ShouldShowField(field models.FieldDefinition, answers models.TableAnswers, tableID string) bool {
	return ShouldShowFieldIn(field, models.EvaluationData{tableID: answers}, tableID)
}

// ShouldShowFieldIn is ShouldShowField over every table's answers. A
// dependency owned by another table is read from that table.
func ShouldShowFieldIn(field models.FieldDefinition, data models.EvaluationData, tableID string) bool {
	return shouldShow(field, func(id string) models.Value {
		if owner, ok := models.TableIDOf(id); ok && owner != tableID {
			return data.Lookup(id)
		}
		return data.Value(tableID, id)
	})
}

// ShouldShowSubquestion reports whether at least one sibling field holds a
// truthy scalar or a non-empty list.
func ShouldShowSubquestion(sq models.Subquestion, answers models.TableAnswers) bool {
	for _, id := range sq.Siblings {
		if models.ValueOf(answers[id]).Truthy() {
			return true
		}
	}
	return false
}

// VisibleFields filters a table's fields down to the visible ones, in order.
func VisibleFields(table *models.TableSchema, answers models.TableAnswers) []models.FieldDefinition {
	if table == nil {
		return nil
	}
	visible := make([]models.FieldDefinition, 0, len(table.Fields))
	for _, f := range table.Fields {
		if ShouldShowField(f, answers, table.ID) {
			visible = append(visible, f)
		}
	}
	return visible
}

func shouldShow(field models.FieldDefinition, lookup func(string) models.Value) bool {
	if field.Condition != nil && !conditionHolds(*field.Condition, lookup(field.Condition.Field)) {
		return false
	}
	if field.DisplayCondition != nil && !displayHolds(*field.DisplayCondition, lookup(field.DisplayCondition.Driver)) {
		return false
	}
	return true
}

func conditionHolds(cond models.Condition, current models.Value) bool {
	if current.Kind() == models.KindList && cond.Value.Kind() != models.KindList {
		return current.Contains(cond.Value)
	}
	return current.Equal(cond.Value)
}

func displayHolds(cond models.DisplayCondition, current models.Value) bool {
	switch current.Kind() {
	case models.KindString:
		s, _ := current.AsString()
		return containsString(cond.Triggers, s)
	case models.KindList:
		for _, item := range current.Items() {
			if s, ok := item.AsString(); ok && containsString(cond.Triggers, s) {
				return true
			}
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
