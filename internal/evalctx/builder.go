// Package evalctx builds the evaluation context: the flattened answers of
// every table plus the variables derived from them (ages, BMI, wound
// chronology, ankle/arm ratio and the boolean risk flags).
package evalctx

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/logger"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/schema"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/scoring"
)

// DefaultChronicAfterDays is the wound age past which a wound is chronic.
const DefaultChronicAfterDays = 28

// Builder derives contexts from evaluation data.
type Builder struct {
	clock        func() time.Time
	schemas      schema.Loader
	vocab        Vocabulary
	chronicAfter int
	sink         logger.Sink
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock sets the source of the reference date.
func WithClock(clock func() time.Time) Option {
	return func(b *Builder) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// WithReferenceDate fixes the reference date.
func WithReferenceDate(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

// WithSchemas lets the builder record each answered field's declared kind.
func WithSchemas(l schema.Loader) Option {
	return func(b *Builder) { b.schemas = l }
}

// WithVocabulary replaces the field ids the derivations read.
func WithVocabulary(v Vocabulary) Option {
	return func(b *Builder) { b.vocab = v }
}

// WithChronicThreshold sets the chronic wound threshold in days.
func WithChronicThreshold(days int) Option {
	return func(b *Builder) {
		if days > 0 {
			b.chronicAfter = days
		}
	}
}

// WithSink sets where unusable answers are reported.
func WithSink(s logger.Sink) Option {
	return func(b *Builder) { b.sink = logger.OrNop(s) }
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		clock:        time.Now,
		vocab:        DefaultVocabulary(),
		chronicAfter: DefaultChronicAfterDays,
		sink:         logger.Nop{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build flattens data and derives the context variables. Cost is linear in
// the number of answers.
func (b *Builder) Build(ctx context.Context, data models.EvaluationData) *Context {
	c := newContext(dateOnly(b.clock()))

	for tableID, answers := range data {
		for fieldID, raw := range answers {
			c.values[fieldID] = models.ValueOf(raw)
		}
		b.recordKinds(ctx, c, tableID)
	}

	b.deriveAge(c)
	b.deriveBMI(c)
	b.deriveWoundAge(c)
	b.deriveABI(c)
	b.deriveFlags(c)
	return c
}

func (b *Builder) recordKinds(ctx context.Context, c *Context, tableID string) {
	if b.schemas == nil {
		return
	}
	table, err := b.schemas.Load(ctx, tableID)
	if err != nil {
		return
	}
	for _, f := range table.Fields {
		c.kinds[f.ID] = f.Kind
	}
}

func (b *Builder) invalid(subject, format string, args ...any) {
	b.sink.Report(logger.NewDiagnostic(logger.KindValidation, "evalctx", subject, fmt.Sprintf(format, args...)))
}

func (b *Builder) date(c *Context, fieldID string) (time.Time, bool) {
	v := c.Get(fieldID)
	if fieldID == "" || v.IsNull() {
		return time.Time{}, false
	}
	t, err := ParseDate(v)
	if err != nil {
		b.invalid(fieldID, "%v", err)
		return time.Time{}, false
	}
	return t, true
}

func (b *Builder) deriveAge(c *Context) {
	birth, ok := b.date(c, b.vocab.BirthDate)
	if !ok {
		return
	}
	age, ok := CalendarDiff(birth, c.reference)
	if !ok {
		b.invalid(b.vocab.BirthDate, "birth date %s is after %s", birth.Format(models.DateLayout), c.reference.Format(models.DateLayout))
		return
	}
	c.setDerived(VarAge, models.Number(float64(age.Years)))
	c.setDerived(VarAgeYears, models.Number(float64(age.Years)))
	c.setDerived(VarAgeMonths, models.Number(float64(age.TotalMonths)))
	c.setDerived(VarAgeDays, models.Number(float64(age.TotalDays)))
}

func (b *Builder) deriveBMI(c *Context) {
	height, okH := c.Number(b.vocab.Height)
	weight, okW := c.Number(b.vocab.Weight)
	if !okH || !okW {
		// A directly entered value still classifies.
		if bmi, ok := c.Number(b.vocab.BMI); ok && bmi > 0 {
			c.setDerived(VarBMI, models.Number(bmi))
			c.setDerived(VarBMICategory, models.String(ClassifyBMI(bmi).ID))
		}
		return
	}
	bmi, ok := ComputeBMI(weight, height)
	if !ok {
		b.invalid(b.vocab.Height, "cannot compute BMI from height %v cm and weight %v kg", height, weight)
		return
	}
	c.setDerived(VarBMI, models.Number(bmi))
	c.setDerived(VarBMICategory, models.String(ClassifyBMI(bmi).ID))
	if b.vocab.BMI != "" && c.Get(b.vocab.BMI).IsNull() {
		c.values[b.vocab.BMI] = models.Number(bmi)
	}
}

func (b *Builder) deriveWoundAge(c *Context) {
	onset, ok := b.date(c, b.vocab.WoundOnset)
	if !ok {
		return
	}
	days := DaysBetween(onset, c.reference)
	if days < 0 {
		b.invalid(b.vocab.WoundOnset, "wound onset %s is after %s", onset.Format(models.DateLayout), c.reference.Format(models.DateLayout))
		return
	}
	c.setDerived(VarWoundAgeDays, models.Number(float64(days)))
	c.setDerived(VarWoundChronic, models.Bool(days > b.chronicAfter))
	c.setDerived(VarWoundRecent, models.Bool(days <= b.chronicAfter))
}

func (b *Builder) deriveABI(c *Context) {
	p := scoring.Pressures{
		RightArm:   b.number(c, b.vocab.RightArm),
		LeftArm:    b.number(c, b.vocab.LeftArm),
		RightAnkle: b.number(c, b.vocab.RightAnkle),
		LeftAnkle:  b.number(c, b.vocab.LeftAnkle),
	}
	if p == (scoring.Pressures{}) {
		return
	}
	res := scoring.InterpretPressures(p)
	if res.Right.Valid {
		c.setDerived(VarABIRight, models.Number(res.Right.Ratio))
	}
	if res.Left.Valid {
		c.setDerived(VarABILeft, models.Number(res.Left.Ratio))
	}
	worst, ok := res.Worst()
	if !ok {
		c.setDerived(VarABIBand, models.String(scoring.BandInvalid.ID))
		b.sink.Report(logger.NewDiagnostic(logger.KindInvalidMeasurement, "evalctx", b.vocab.RightArm,
			"ankle/arm ratio needs an arm pressure and at least one ankle pressure"))
		return
	}
	c.setDerived(VarABI, models.Number(worst.Ratio))
	c.setDerived(VarABIBand, models.String(worst.Band.ID))
}

func (b *Builder) number(c *Context, fieldID string) float64 {
	n, _ := c.Number(fieldID)
	return n
}

func (b *Builder) deriveFlags(c *Context) {
	v := b.vocab
	signs := func(fieldID string) bool {
		for _, item := range selections(c.Get(fieldID)) {
			if item != v.NoSign {
				return true
			}
		}
		return false
	}
	selected := func(fieldID string, options ...string) bool {
		for _, item := range selections(c.Get(fieldID)) {
			if slices.Contains(options, item) {
				return true
			}
		}
		return false
	}
	isTrue := func(fieldID string) bool {
		t, _ := c.Get(fieldID).AsBool()
		return t
	}

	measured := isTrue(v.ABIMeasured)
	_, hasRatio := c.Number(VarABI)

	c.setDerived(FlagInfectionSigns, models.Bool(signs(v.LocalSigns) || signs(v.SystemicSigns)))
	c.setDerived(FlagBiofilmSuspected, models.Bool(isTrue(v.Biofilm)))
	c.setDerived(FlagSmoking, models.Bool(selected(v.Smoking, v.SmokingActive...)))
	c.setDerived(FlagAutoimmuneDisease, models.Bool(selected(v.Conditions, v.Autoimmune)))
	c.setDerived(FlagThyroidDisorder, models.Bool(selected(v.Conditions, v.Thyroid)))
	c.setDerived(FlagNutritionInsufficient, models.Bool(selected(v.Intake, v.IntakeInsufficient...) || isTrue(v.WeightLoss)))
	c.setDerived(FlagVascularInadequate, models.Bool(!measured || !hasRatio))
	c.setDerived(FlagHealingMedication, models.Bool(selected(v.Medications, v.HealingMedications...)))
}

// selections returns the string members of a single- or multi-choice answer.
func selections(v models.Value) []string {
	if s, ok := v.AsString(); ok {
		return []string{s}
	}
	var out []string
	for _, item := range v.Items() {
		if s, ok := item.AsString(); ok {
			out = append(out, s)
		}
	}
	return out
}

// ComputeBMI returns weight / height(m)^2 rounded to one decimal. height is
// in centimetres.
func ComputeBMI(weightKg, heightCm float64) (float64, bool) {
	if heightCm <= 0 || weightKg <= 0 || math.IsNaN(heightCm) || math.IsNaN(weightKg) ||
		math.IsInf(heightCm, 0) || math.IsInf(weightKg, 0) {
		return 0, false
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10, true
}
