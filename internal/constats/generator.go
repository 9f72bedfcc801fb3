// Package constats derives clinical findings from the answers: each constat
// table's rules are evaluated against the evaluation context, duplicates are
// merged and most-severe-only sections keep a single finding.
package constats

import (
	"context"
	"fmt"
	"slices"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/evalctx"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/expr"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/logger"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/schema"
)

// DefaultTables is the constat table registry used by GenerateAll.
var DefaultTables = []string{"C4T01", "C4T02", "C4T03"}

// Generator evaluates constat tables.
type Generator struct {
	schemas   schema.Loader
	builder   *evalctx.Builder
	evaluator *expr.Evaluator
	tables    []string
	sink      logger.Sink
}

// NewGenerator creates a Generator. With no tables, DefaultTables is used.
func NewGenerator(schemas schema.Loader, builder *evalctx.Builder, sink logger.Sink, tables ...string) *Generator {
	if len(tables) == 0 {
		tables = DefaultTables
	}
	sink = logger.OrNop(sink)
	return &Generator{
		schemas:   schemas,
		builder:   builder,
		evaluator: expr.NewEvaluator(sink),
		tables:    slices.Clone(tables),
		sink:      sink,
	}
}

// Tables returns the registry in generation order.
func (g *Generator) Tables() []string {
	return slices.Clone(g.tables)
}

// GenerateForTable builds a fresh context from data and evaluates one
// constat table.
func (g *Generator) GenerateForTable(ctx context.Context, tableID string, data models.EvaluationData) models.ConstatResult {
	return g.Generate(ctx, tableID, g.builder.Build(ctx, data))
}

// GenerateAll evaluates every registered table against one shared context.
// A table whose generation fails yields an empty result; the others are
// unaffected.
func (g *Generator) GenerateAll(ctx context.Context, data models.EvaluationData) []models.ConstatResult {
	resolver := g.builder.Build(ctx, data)
	out := make([]models.ConstatResult, 0, len(g.tables))
	for _, tableID := range g.tables {
		out = append(out, g.generateSafely(ctx, tableID, resolver))
	}
	return out
}

func (g *Generator) generateSafely(ctx context.Context, tableID string, r expr.Resolver) (result models.ConstatResult) {
	defer func() {
		if rec := recover(); rec != nil {
			g.sink.Report(logger.NewDiagnostic(logger.KindGenerationFailed, "constats", tableID,
				fmt.Sprintf("generation failed: %v", rec)))
			result = models.EmptyConstatResult(tableID)
		}
	}()
	return g.Generate(ctx, tableID, r)
}

// Generate evaluates one constat table against an already built context.
// Mapping rules are evaluated first, in order, then fields carrying an
// inline rule.
func (g *Generator) Generate(ctx context.Context, tableID string, r expr.Resolver) models.ConstatResult {
	table, err := g.schemas.Load(ctx, tableID)
	if err != nil {
		return models.EmptyConstatResult(tableID)
	}

	acc := newAccumulator(tableID)
	for i, rule := range table.Mapping {
		section := rule.Section
		if section == "" {
			section = table.DefaultSection()
		}
		if g.evaluator.EvaluateFor(rule.Constat, rule.Condition, r) {
			acc.add(models.DetectedConstat{
				ConstatID: rule.Constat,
				TableID:   tableID,
				Section:   section,
				Source:    rule.Source,
				Rule:      fmt.Sprintf("%s/source_mapping/%d", tableID, i),
			})
		}
	}
	for _, f := range table.Fields {
		if !f.HasInlineRule() {
			continue
		}
		section := f.Section
		if section == "" {
			section = table.DefaultSection()
		}
		if g.evaluator.EvaluateFor(f.Constat, f.Expression, r) {
			acc.add(models.DetectedConstat{
				ConstatID: f.Constat,
				TableID:   tableID,
				Section:   section,
				Source:    f.ID,
				Rule:      f.ID,
			})
		}
	}

	kept := ResolveSeverity(acc.detected, table.Sections)
	return models.ConstatResult{
		TableID:  tableID,
		Detected: kept,
		Data:     pruneData(acc.data, kept),
	}
}

// accumulator merges repeated detections of one constat: the first firing
// rule is the detection, every firing rule is listed in its data.
type accumulator struct {
	tableID  string
	detected []models.DetectedConstat
	data     map[string]models.ConstatData
}

func newAccumulator(tableID string) *accumulator {
	return &accumulator{
		tableID:  tableID,
		detected: []models.DetectedConstat{},
		data:     make(map[string]models.ConstatData),
	}
}

func (a *accumulator) add(d models.DetectedConstat) {
	cd, seen := a.data[d.ConstatID]
	if !seen {
		a.detected = append(a.detected, d)
		cd = models.ConstatData{ConstatID: d.ConstatID, Section: d.Section}
	}
	if d.Source != "" && !slices.Contains(cd.Sources, d.Source) {
		cd.Sources = append(cd.Sources, d.Source)
	}
	cd.Rules = append(cd.Rules, d.Rule)
	a.data[d.ConstatID] = cd
}
