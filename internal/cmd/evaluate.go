package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/constats"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/display"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/evalctx"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/report"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/scoring"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/validation"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewEvaluateCommand creates the evaluate command
func NewEvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate <answers.yaml>",
		Short: "Derive context, findings and scores from an answers file",
		Long: `Evaluate an answers file (table id -> field id -> value, "-" for stdin).

Prints the derived patient context, the findings of every configured constat
table, the BWAT total and any answer that violates its declared bounds.

Examples:
  woundcore evaluate visit.yaml
  woundcore evaluate visit.yaml --reference-date 2025-03-15
  woundcore evaluate visit.yaml --report-dir reports/
  woundcore evaluate visit.yaml --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runEvaluate,
	}
	cmd.Flags().String("report-dir", "", "Write Markdown and HTML reports into this directory")
	cmd.Flags().String("format", "text", "Output format (text, yaml)")
	return cmd
}

// Evaluation is the machine-readable result of the evaluate command.
type Evaluation struct {
	RunID      string                  `yaml:"run_id"`
	Context    map[string]any          `yaml:"context"`
	Constats   []models.ConstatResult  `yaml:"constats"`
	Score      models.ScoreBreakdown   `yaml:"score"`
	Validation models.ValidationReport `yaml:"validation,omitempty"`
	Titles     map[string]string       `yaml:"-"`
	context    *evalctx.Context        `yaml:"-"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "yaml" {
		return fmt.Errorf("invalid format %q, must be text or yaml", format)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	data, err := loadAnswers(args[0])
	if err != nil {
		return err
	}

	ev, err := evaluate(ctx, e, data)
	if err != nil {
		return err
	}
	e.logInfo(fmt.Sprintf("evaluation %s: %d answers, %d findings, BWAT %g", ev.RunID, data.Count(), countFindings(ev.Constats), ev.Score.Total))

	out := cmd.OutOrStdout()
	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("failed to encode evaluation: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
	} else {
		printEvaluation(out, ev)
	}

	reportDir, _ := cmd.Flags().GetString("report-dir")
	if reportDir != "" {
		r := report.Build(report.Input{
			RunID:       ev.RunID,
			Context:     ev.context,
			Constats:    ev.Constats,
			TableTitles: ev.Titles,
			Score:       ev.Score,
			Validation:  ev.Validation,
		})
		mdPath, htmlPath, err := report.NewRenderer().Save(ctx, r, reportDir)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s and %s\n", mdPath, htmlPath)
	}
	return nil
}

// evaluate runs every engine component over data.
func evaluate(ctx context.Context, e *engine, data models.EvaluationData) (*Evaluation, error) {
	builder, err := e.builder()
	if err != nil {
		return nil, err
	}
	c := builder.Build(ctx, data)

	gen := constats.NewGenerator(e.store, builder, e.sink, e.cfg.ConstatTables...)
	results := make([]models.ConstatResult, 0, len(e.cfg.ConstatTables))
	titles := make(map[string]string)
	if len(e.cfg.ConstatTables) > 0 {
		results = gen.GenerateAll(ctx, data)
		for _, res := range results {
			if table, err := e.store.Load(ctx, res.TableID); err == nil {
				titles[res.TableID] = table.Title
			}
		}
	}

	ctxMap := make(map[string]any)
	for name, v := range c.Derived() {
		ctxMap[name] = v.Interface()
	}

	return &Evaluation{
		RunID:      uuid.NewString(),
		Context:    ctxMap,
		Constats:   results,
		Score:      scoring.NewAggregator(e.store, e.sink).Total(ctx, data),
		Validation: validation.ValidateData(ctx, e.store, data),
		Titles:     titles,
		context:    c,
	}, nil
}

func countFindings(results []models.ConstatResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Detected)
	}
	return n
}

func printEvaluation(out io.Writer, ev *Evaluation) {
	fmt.Fprintf(out, "Evaluation %s\n\n", ev.RunID)

	fmt.Fprintf(out, "Context:\n")
	names := make([]string, 0, len(ev.Context))
	for name := range ev.Context {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-32s %v\n", name, ev.Context[name])
	}
	if id, ok := ev.context.Get(evalctx.VarABIBand).AsString(); ok {
		if band, ok := scoring.BandByID(id); ok {
			fmt.Fprintf(out, "  %-32s ", "ankle-brachial index")
			display.Badge(out, band.Label, band.Color)
			fmt.Fprintln(out)
		}
	}

	fmt.Fprintf(out, "\nFindings:\n")
	if len(ev.Constats) == 0 {
		fmt.Fprintf(out, "  (no constat tables configured)\n")
	}
	for _, res := range ev.Constats {
		fmt.Fprintf(out, "  %s %s\n", res.TableID, ev.Titles[res.TableID])
		if len(res.Detected) == 0 {
			fmt.Fprintf(out, "    none\n")
		}
		for _, d := range res.Detected {
			if d.Section != "" {
				fmt.Fprintf(out, "    - %s [%s]\n", d.ConstatID, d.Section)
			} else {
				fmt.Fprintf(out, "    - %s\n", d.ConstatID)
			}
		}
	}

	status := scoring.ClassifyTotal(ev.Score.Total)
	fmt.Fprintf(out, "\nBWAT total: %g ", ev.Score.Total)
	display.Badge(out, status.Label, status.Color)
	fmt.Fprintln(out)

	if ev.Validation.HasErrors() {
		var items []string
		ids := make([]string, 0, len(ev.Validation))
		for id := range ev.Validation {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			for _, verr := range ev.Validation[id] {
				items = append(items, verr.Error())
			}
		}
		fmt.Fprintln(out)
		display.Warning{
			Title: fmt.Sprintf("%d field(s) violate their declared bounds", len(ids)),
			Items: items,
		}.Display(out)
	}
}
