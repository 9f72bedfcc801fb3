package cmd

import (
	"fmt"
	"strings"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/display"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/scoring"
	"github.com/spf13/cobra"
)

var tierColors = map[string]string{
	"none":      "green",
	"low":       "blue",
	"moderate":  "yellow",
	"high":      "orange",
	"very_high": "red",
}

// NewRiskCommand creates the risk command
func NewRiskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk <adult|pediatric>",
		Short: "Compute a Braden pressure-injury risk score",
		Long: `Compute a Braden (adult) or Braden Q (pediatric) risk score from one
selection per dimension. Partial selections give a running total.

Examples:
  woundcore risk adult --select sensory=3 --select moisture=2
  woundcore risk pediatric --select mobility=1 --select activity=2`,
		Args: cobra.ExactArgs(1),
		RunE: runRisk,
	}
	cmd.Flags().StringArray("select", nil, "Selection as dimension=option (repeatable)")
	return cmd
}

func runRisk(cmd *cobra.Command, args []string) error {
	scale, err := scoring.ScaleByID(args[0])
	if err != nil {
		return err
	}
	calc := scoring.NewCalculator(scale)

	selections, _ := cmd.Flags().GetStringArray("select")
	for _, sel := range selections {
		dim, opt, ok := strings.Cut(sel, "=")
		if !ok {
			return fmt.Errorf("invalid selection %q, expected dimension=option", sel)
		}
		if err := calc.Select(strings.TrimSpace(dim), strings.TrimSpace(opt)); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d\n", scale.Label, calc.Total())
	if tier, ok := calc.Tier(); ok {
		display.Badge(out, tier.Label, tierColors[tier.ID])
		fmt.Fprintf(out, " %s\n", tier.Description)
	}
	if missing := calc.Missing(); len(missing) > 0 {
		fmt.Fprintf(out, "Missing: %s\n", strings.Join(missing, ", "))
	}
	return nil
}
