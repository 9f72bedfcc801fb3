package models

// DetectedConstat records one finding and the rule that fired it.
type DetectedConstat struct {
	ConstatID string `json:"constat_id" yaml:"constat_id"`
	TableID   string `json:"table_id" yaml:"table_id"`
	Section   string `json:"section,omitempty" yaml:"section,omitempty"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty"`
	Rule      string `json:"rule" yaml:"rule"`
}

// ConstatData aggregates every rule that fired a given constat.
type ConstatData struct {
	ConstatID string   `json:"constat_id" yaml:"constat_id"`
	Section   string   `json:"section,omitempty" yaml:"section,omitempty"`
	Sources   []string `json:"sources,omitempty" yaml:"sources,omitempty"`
	Rules     []string `json:"rules" yaml:"rules"`
}

// ConstatResult is the outcome of generating one constat table.
type ConstatResult struct {
	TableID  string                 `json:"table_id" yaml:"table_id"`
	Detected []DetectedConstat      `json:"detected" yaml:"detected"`
	Data     map[string]ConstatData `json:"data" yaml:"data"`
}

// EmptyConstatResult returns a result with no findings.
func EmptyConstatResult(tableID string) ConstatResult {
	return ConstatResult{TableID: tableID, Detected: []DetectedConstat{}, Data: map[string]ConstatData{}}
}

// IDs returns the detected constat ids in detection order.
func (r ConstatResult) IDs() []string {
	ids := make([]string, len(r.Detected))
	for i, d := range r.Detected {
		ids[i] = d.ConstatID
	}
	return ids
}

// Has reports whether a constat was detected.
func (r ConstatResult) Has(constatID string) bool {
	for _, d := range r.Detected {
		if d.ConstatID == constatID {
			return true
		}
	}
	return false
}
