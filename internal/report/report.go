// Package report assembles an evaluation into a Markdown document and renders
// it to HTML.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/evalctx"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"github.com/google/uuid"
)

// Input is everything one evaluation produced.
type Input struct {
	RunID       string
	GeneratedAt time.Time
	Context     *evalctx.Context
	Constats    []models.ConstatResult
	TableTitles map[string]string
	Score       models.ScoreBreakdown
	Validation  models.ValidationReport
}

// Highlight is one labelled derived value.
type Highlight struct {
	Label string
	Value string
}

// Report is an evaluation ready to render.
type Report struct {
	ID            string
	GeneratedAt   time.Time
	ReferenceDate time.Time
	Highlights    []Highlight
	Flags         []string
	Constats      []models.ConstatResult
	TableTitles   map[string]string
	Score         models.ScoreBreakdown
	Validation    models.ValidationReport
}

// Build gathers the report content. A missing run id gets a fresh uuid.
func Build(in Input) *Report {
	r := &Report{
		ID:          in.RunID,
		GeneratedAt: in.GeneratedAt,
		Constats:    in.Constats,
		TableTitles: in.TableTitles,
		Score:       in.Score,
		Validation:  in.Validation,
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now()
	}
	if in.Context != nil {
		r.ReferenceDate = in.Context.ReferenceDate()
		r.Highlights = highlights(in.Context)
		for _, flag := range evalctx.Flags {
			if in.Context.Flag(flag) {
				r.Flags = append(r.Flags, flag)
			}
		}
	}
	return r
}

func highlights(c *evalctx.Context) []Highlight {
	var out []Highlight
	if years, ok := c.Number(evalctx.VarAgeYears); ok {
		months, _ := c.Number(evalctx.VarAgeMonths)
		out = append(out, Highlight{"Age", fmt.Sprintf("%d years (%d months)", int(years), int(months))})
	}
	if bmi, ok := c.Number(evalctx.VarBMI); ok {
		cat, _ := c.Get(evalctx.VarBMICategory).AsString()
		out = append(out, Highlight{"BMI", fmt.Sprintf("%.1f kg/m2 (%s)", bmi, cat)})
	}
	if days, ok := c.Number(evalctx.VarWoundAgeDays); ok {
		state := "recent"
		if c.Flag(evalctx.VarWoundChronic) {
			state = "chronic"
		}
		out = append(out, Highlight{"Wound age", fmt.Sprintf("%d days (%s)", int(days), state)})
	}
	if band, ok := c.Get(evalctx.VarABIBand).AsString(); ok {
		value := band
		if abi, ok := c.Number(evalctx.VarABI); ok {
			value = fmt.Sprintf("%.2f (%s)", abi, band)
		}
		out = append(out, Highlight{"Ankle-brachial index", value})
	}
	return out
}

// FindingCount returns the number of detected constats across tables.
func (r *Report) FindingCount() int {
	n := 0
	for _, res := range r.Constats {
		n += len(res.Detected)
	}
	return n
}

// validationIDs returns the fields with violations, sorted.
func (r *Report) validationIDs() []string {
	ids := make([]string, 0, len(r.Validation))
	for id := range r.Validation {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
