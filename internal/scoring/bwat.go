package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/logger"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/schema"
)

// Policy is how a contributing table turns its answers into points.
type Policy string

const (
	// PolicySize bands a measured area (or length x width).
	PolicySize Policy = "size"
	// PolicyOption takes the score of the chosen option of one field.
	PolicyOption Policy = "option"
	// PolicyDual sums two independently scored fields.
	PolicyDual Policy = "dual"
	// PolicyTriple sums three named sub-scores.
	PolicyTriple Policy = "triple"
)

// Contributor is one table taking part in the composite total.
// For PolicySize, Fields are area, length and width (area wins when answered).
type Contributor struct {
	TableID string
	Policy  Policy
	Fields  []string
}

// DefaultContributors is the BWAT table list, in evaluation order.
func DefaultContributors() []Contributor {
	return []Contributor{
		{TableID: "C3T01", Policy: PolicySize, Fields: []string{"C3T01E03", "C3T01E01", "C3T01E02"}},
		{TableID: "C3T02", Policy: PolicyOption, Fields: []string{"C3T02E01"}},
		{TableID: "C3T03", Policy: PolicyOption, Fields: []string{"C3T03E01"}},
		{TableID: "C3T04", Policy: PolicyOption, Fields: []string{"C3T04E01"}},
		{TableID: "C3T05", Policy: PolicyDual, Fields: []string{"C3T05E01", "C3T05E02"}},
		{TableID: "C3T06", Policy: PolicyDual, Fields: []string{"C3T06E01", "C3T06E02"}},
		{TableID: "C3T07", Policy: PolicyTriple, Fields: []string{"C3T07E01", "C3T07E02", "C3T07E03"}},
		{TableID: "C3T08", Policy: PolicyOption, Fields: []string{"C3T08E01"}},
		{TableID: "C3T09", Policy: PolicyOption, Fields: []string{"C3T09E01"}},
	}
}

// SizeBand is one wound-area interval and its points.
type SizeBand struct {
	ID     string
	Label  string
	Points float64
}

// SizeBands lists the six area bands in ascending order.
var SizeBands = []SizeBand{
	{ID: "healed", Label: "Healed", Points: 0},
	{ID: "lt4", Label: "Less than 4 cm2", Points: 1},
	{ID: "4to16", Label: "4 to 16 cm2", Points: 2},
	{ID: "16to36", Label: "16.1 to 36 cm2", Points: 3},
	{ID: "36to80", Label: "36.1 to 80 cm2", Points: 4},
	{ID: "gt80", Label: "More than 80 cm2", Points: 5},
}

// ClassifyArea returns the size band of an area in cm2.
func ClassifyArea(area float64) SizeBand {
	switch {
	case math.IsNaN(area), area <= 0:
		return SizeBands[0]
	case area < 4:
		return SizeBands[1]
	case area <= 16:
		return SizeBands[2]
	case area <= 36:
		return SizeBands[3]
	case area <= 80:
		return SizeBands[4]
	default:
		return SizeBands[5]
	}
}

// Status is the qualitative band of a composite total.
type Status struct {
	ID    string
	Label string
	Color string
}

var (
	StatusNotComputed  = Status{ID: "not_computed", Label: "Not computed", Color: "grey"}
	StatusTissueHealth = Status{ID: "tissue_health", Label: "Tissue health", Color: "green"}
	StatusHealing      = Status{ID: "healing", Label: "Wound healing", Color: "blue"}
	StatusRegeneration = Status{ID: "regeneration", Label: "Wound regeneration", Color: "yellow"}
	StatusDegeneration = Status{ID: "degeneration", Label: "Wound degeneration", Color: "red"}
)

// ClassifyTotal maps a composite total to its status:
// <=0 not computed, 1-4 tissue health, 5-14 healing, 15-29 regeneration, >=30 degeneration.
func ClassifyTotal(total float64) Status {
	switch {
	case math.IsNaN(total), total <= 0:
		return StatusNotComputed
	case total < 5:
		return StatusTissueHealth
	case total < 15:
		return StatusHealing
	case total < 30:
		return StatusRegeneration
	default:
		return StatusDegeneration
	}
}

// Aggregator computes the composite assessment total.
type Aggregator struct {
	schemas      schema.Loader
	contributors []Contributor
	sink         logger.Sink
}

// NewAggregator creates an Aggregator. With no contributors the BWAT list is used.
func NewAggregator(schemas schema.Loader, sink logger.Sink, contributors ...Contributor) *Aggregator {
	if len(contributors) == 0 {
		contributors = DefaultContributors()
	}
	return &Aggregator{schemas: schemas, contributors: contributors, sink: logger.OrNop(sink)}
}

// Contributors returns the table list in evaluation order.
func (a *Aggregator) Contributors() []Contributor {
	return append([]Contributor(nil), a.contributors...)
}

// Total walks the contributing tables and sums their points. Unanswered
// tables contribute zero.
func (a *Aggregator) Total(ctx context.Context, data models.EvaluationData) models.ScoreBreakdown {
	var out models.ScoreBreakdown
	for _, c := range a.contributors {
		points, answered := a.TablePoints(ctx, c, data[c.TableID])
		out.Parts = append(out.Parts, models.ScorePart{
			TableID:  c.TableID,
			Policy:   string(c.Policy),
			Points:   points,
			Answered: answered,
		})
		out.Total += points
	}
	status := ClassifyTotal(out.Total)
	out.Category = status.ID
	out.Label = status.Label
	return out
}

// TablePoints applies one contributor's policy to its table's answers.
func (a *Aggregator) TablePoints(ctx context.Context, c Contributor, answers models.TableAnswers) (float64, bool) {
	if len(answers) == 0 {
		return 0, false
	}
	if c.Policy == PolicySize {
		area, ok := measuredArea(c, answers)
		if !ok {
			return 0, false
		}
		return ClassifyArea(area).Points, true
	}

	want := map[Policy]int{PolicyOption: 1, PolicyDual: 2, PolicyTriple: 3}[c.Policy]
	if want == 0 || len(c.Fields) < want {
		a.sink.Report(logger.NewDiagnostic(logger.KindValidation, "scoring", c.TableID,
			fmt.Sprintf("policy %q needs %d field(s), has %d", c.Policy, want, len(c.Fields))))
		return 0, false
	}

	table, err := a.schemas.Load(ctx, c.TableID)
	if err != nil {
		return 0, false
	}
	total := 0.0
	answered := false
	for _, fieldID := range c.Fields[:want] {
		points, ok := a.fieldPoints(table, fieldID, answers)
		if ok {
			total += points
			answered = true
		}
	}
	return total, answered
}

// fieldPoints scores one field through the option its answer names. Answers
// whose shape differs from the declared kind count as unanswered.
func (a *Aggregator) fieldPoints(table *models.TableSchema, fieldID string, answers models.TableAnswers) (float64, bool) {
	raw, present := answers[fieldID]
	v := models.ValueOf(raw)
	if !present || v.IsNull() {
		return 0, false
	}
	field, ok := table.Field(fieldID)
	if !ok {
		return 0, false
	}
	optionID, ok := v.AsString()
	if !ok || v.Kind() != field.Kind {
		a.sink.Report(logger.NewDiagnostic(logger.KindValidation, "scoring", fieldID,
			fmt.Sprintf("expected a %s option id, got %s %s", field.Kind, v.Kind(), v)))
		return 0, false
	}
	if optionID == "" {
		return 0, false
	}
	opt, ok := field.Option(optionID)
	if !ok {
		a.sink.Report(logger.NewDiagnostic(logger.KindValidation, "scoring", fieldID,
			fmt.Sprintf("unknown option %q", optionID)))
		return 0, false
	}
	if !isFinite(opt.Score) {
		return 0, false
	}
	return opt.Score, true
}

// measuredArea prefers the entered area and falls back to length x width.
// Non-finite or negative measurements are unanswered.
func measuredArea(c Contributor, answers models.TableAnswers) (float64, bool) {
	if len(c.Fields) > 0 {
		if area, ok := measurement(answers, c.Fields[0]); ok {
			return area, true
		}
	}
	if len(c.Fields) >= 3 {
		length, okL := measurement(answers, c.Fields[1])
		width, okW := measurement(answers, c.Fields[2])
		if okL && okW {
			return length * width, true
		}
	}
	return 0, false
}

func measurement(answers models.TableAnswers, fieldID string) (float64, bool) {
	n, ok := models.ValueOf(answers[fieldID]).AsNumber()
	if !ok || !isFinite(n) || n < 0 {
		return 0, false
	}
	return n, true
}

func isFinite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}
