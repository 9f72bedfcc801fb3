package cmd

import (
	"context"
	"fmt"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/visibility"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewVisibleCommand creates the visible command
func NewVisibleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visible <table-id> <answers.yaml>",
		Short: "List the fields a form shows for the given answers",
		Long: `List the fields of a table that are visible for an answers file.

Fields whose dependency or display condition does not hold are hidden.
Sub-questions are listed under their field when one of their sibling
answers is set.

Examples:
  woundcore visible C1T02 visit.yaml
  woundcore visible C2T01 visit.yaml --all`,
		Args: cobra.ExactArgs(2),
		RunE: runVisible,
	}
	cmd.Flags().Bool("all", false, "Also list hidden fields")
	return cmd
}

func runVisible(cmd *cobra.Command, args []string) error {
	showAll, _ := cmd.Flags().GetBool("all")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	table, err := e.store.Load(ctx, args[0])
	if err != nil {
		return err
	}
	data, err := loadAnswers(args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	hidden := color.New(color.Faint)
	fmt.Fprintf(out, "%s %s\n", table.ID, table.Title)

	shown := 0
	for _, f := range table.Fields {
		visible := visibility.ShouldShowFieldIn(f, data, table.ID)
		if visible {
			shown++
		} else if !showAll {
			continue
		}

		line := fmt.Sprintf("  %-10s %s", f.ID, f.Label)
		if value := data.Value(table.ID, f.ID); !value.IsNull() {
			line += fmt.Sprintf(" = %s", value)
		}
		if visible {
			fmt.Fprintln(out, line)
		} else {
			hidden.Fprintln(out, line+" (hidden)")
		}

		for _, sq := range f.Subquestions {
			if visibility.ShouldShowSubquestion(sq, data[table.ID]) {
				fmt.Fprintf(out, "    %-8s %s\n", sq.ID, sq.Label)
			} else if showAll {
				hidden.Fprintf(out, "    %-8s %s (hidden)\n", sq.ID, sq.Label)
			}
		}
	}
	fmt.Fprintf(out, "%d of %d fields visible\n", shown, len(table.Fields))
	return nil
}
