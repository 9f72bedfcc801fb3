package cmd

import (
	"context"
	"fmt"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/constats"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/display"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/logger"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/schema"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [schema-dir]",
		Short: "Check schema documents and constat rules",
		Long: `Load every schema document and check constat rules statically.

Each rule is parsed without being evaluated. References to fields no schema
declares, unknown variables and priority entries no rule can produce are
reported. With a directory argument, its documents are checked on top of
the built-in schemas; otherwise the configured sources are used.

Exit code is non-zero when any problem is found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	source := e.source
	if len(args) == 1 {
		source = schema.Chain{schema.NewDirSource(args[0]), schema.Builtin()}
	}
	recorder := logger.NewRecorder()
	store := schema.NewStore(source, logger.Tee{recorder, e.sink})

	ids, err := source.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list schemas: %w", err)
	}

	var items []string
	checked := 0
	for _, id := range ids {
		table, err := store.Load(ctx, id)
		if err != nil {
			items = append(items, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		checked++
		if table.Family != models.FamilyConstat {
			continue
		}
		for _, issue := range constats.CheckTable(ctx, store, table) {
			items = append(items, fmt.Sprintf("%s: %s", issue.TableID, issue))
		}
	}

	out := cmd.OutOrStdout()
	if len(items) > 0 {
		display.Warning{
			Title:      fmt.Sprintf("%d problem(s) in %d schema(s)", len(items), len(ids)),
			Items:      items,
			Suggestion: "Fix the documents listed above and run validate again",
		}.Display(out)
		return fmt.Errorf("schema validation failed")
	}
	fmt.Fprintf(out, "%d schema(s) valid\n", checked)
	return nil
}
