package models

// ScorePart is the contribution of one table to a composite total.
type ScorePart struct {
	TableID  string  `json:"table_id" yaml:"table_id"`
	Policy   string  `json:"policy" yaml:"policy"`
	Points   float64 `json:"points" yaml:"points"`
	Answered bool    `json:"answered" yaml:"answered"`
}

// ScoreBreakdown is a numeric total plus its qualitative category.
type ScoreBreakdown struct {
	Total    float64     `json:"total" yaml:"total"`
	Category string      `json:"category" yaml:"category"`
	Label    string      `json:"label" yaml:"label"`
	Parts    []ScorePart `json:"parts,omitempty" yaml:"parts,omitempty"`
}
