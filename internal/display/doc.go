// Package display formats terminal output for the woundcore CLI: warnings,
// colored severity badges and progress lines.
//
// # Warnings
//
//	warning := display.Warning{
//	    Title:      "Schema C4T01 has rule errors",
//	    Items:      []string{"source_mapping/2: unexpected end of expression"},
//	    Suggestion: "Fix the condition and run woundcore validate again",
//	}
//	warning.Display(os.Stderr)
//
// # Badges
//
// Bands and statuses carry a color name; Badge prints a label in it:
//
//	display.Badge(os.Stdout, "Moderate arterial disease", "red")
//
// Colors follow github.com/fatih/color, so they are dropped automatically
// when the output is not a terminal or NO_COLOR is set.
package display
