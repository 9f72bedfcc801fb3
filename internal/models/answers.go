package models

// TableAnswers maps field id to the raw answer entered by the operator.
type TableAnswers map[string]any

// EvaluationData maps table id to that table's answers. It is owned by the form
// session; the engine only reads it.
type EvaluationData map[string]TableAnswers

// Value returns a field's answer within one table.
func (d EvaluationData) Value(tableID, fieldID string) Value {
	answers, ok := d[tableID]
	if !ok {
		return Null()
	}
	return ValueOf(answers[fieldID])
}

// Lookup resolves a field's answer using the table encoded in its id, falling
// back to a scan of every table for ids outside the naming pattern.
func (d EvaluationData) Lookup(fieldID string) Value {
	if tableID, ok := TableIDOf(fieldID); ok {
		if answers, ok := d[tableID]; ok {
			if raw, ok := answers[fieldID]; ok {
				return ValueOf(raw)
			}
		}
	}
	for _, answers := range d {
		if raw, ok := answers[fieldID]; ok {
			return ValueOf(raw)
		}
	}
	return Null()
}

// Count returns the total number of answers across tables.
func (d EvaluationData) Count() int {
	n := 0
	for _, answers := range d {
		n += len(answers)
	}
	return n
}
