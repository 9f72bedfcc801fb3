package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/config"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/display"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/schema"
	"github.com/spf13/cobra"
)

// NewSchemasCommand creates the schemas command group
func NewSchemasCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List and import schema documents",
	}
	cmd.AddCommand(newSchemasListCommand())
	cmd.AddCommand(newSchemasImportCommand())
	return cmd
}

func newSchemasListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the schemas the configured sources provide, by family",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			e, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			registry, err := e.store.Registry(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, family := range []models.Family{models.FamilyAssessment, models.FamilyConstat} {
				ids := registry[family]
				fmt.Fprintf(out, "%s (%d)\n", family, len(ids))
				for _, id := range ids {
					table, _ := e.store.Load(ctx, id)
					fmt.Fprintf(out, "  %-6s %s\n", id, table.Title)
				}
			}
			return nil
		},
	}
}

func newSchemasImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Copy a directory of schema documents into a SQLite schema database",
		Long: `Copy every <table-id>.yaml document of a directory into a SQLite schema
database. Each document is decoded before it is stored; invalid documents
are reported and skipped.

The database defaults to --schema-db, then $WOUNDCORE_HOME/schemas.db.`,
		Args: cobra.ExactArgs(1),
		RunE: runSchemasImport,
	}
	cmd.Flags().String("db", "", "Target schema database (overrides --schema-db)")
	return cmd
}

func runSchemasImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.SchemaDB
	}
	if dbPath == "" {
		if dbPath, err = config.GetSchemaDBPath(); err != nil {
			return err
		}
	}

	db, err := schema.NewSQLiteSource(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open schema database: %w", err)
	}
	defer db.Close()

	dir := schema.NewDirSource(args[0])
	ids, err := dir.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	progress := display.NewProgressIndicator(out, "Importing schemas", len(ids))
	progress.Start()
	var failures []string
	stored := 0
	for _, id := range ids {
		progress.Step(id)
		doc, err := dir.Fetch(ctx, id)
		if err == nil {
			err = db.Put(ctx, id, doc)
		}
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		stored++
	}
	progress.Complete(stored)

	if len(failures) > 0 {
		display.Warning{
			Title: fmt.Sprintf("%d document(s) skipped", len(failures)),
			Items: failures,
		}.Display(out)
	}
	fmt.Fprintf(out, "Stored %d schema(s) in %s\n", stored, dbPath)
	if stored == 0 && len(failures) > 0 {
		return fmt.Errorf("no schema imported: %s", strings.Join(failures, "; "))
	}
	return nil
}
