package report

import (
	"fmt"
	"strings"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
)

// Markdown renders the report.
func (r *Report) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# Wound evaluation report\n\n")
	fmt.Fprintf(&sb, "- Run: `%s`\n", r.ID)
	if !r.ReferenceDate.IsZero() {
		fmt.Fprintf(&sb, "- Reference date: %s\n", r.ReferenceDate.Format(models.DateLayout))
	}
	fmt.Fprintf(&sb, "- Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	sb.WriteString("## Patient context\n\n")
	if len(r.Highlights) == 0 {
		sb.WriteString("No derived values.\n\n")
	} else {
		sb.WriteString("| Measure | Value |\n|---|---|\n")
		for _, h := range r.Highlights {
			fmt.Fprintf(&sb, "| %s | %s |\n", h.Label, h.Value)
		}
		sb.WriteString("\n")
	}
	if len(r.Flags) > 0 {
		sb.WriteString("Risk flags: ")
		for i, f := range r.Flags {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "`%s`", f)
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Findings\n\n")
	if len(r.Constats) == 0 {
		sb.WriteString("No constat tables evaluated.\n\n")
	}
	for _, res := range r.Constats {
		title := res.TableID
		if t, ok := r.TableTitles[res.TableID]; ok && t != "" {
			title = fmt.Sprintf("%s %s", res.TableID, t)
		}
		fmt.Fprintf(&sb, "### %s\n\n", title)
		if len(res.Detected) == 0 {
			sb.WriteString("No findings.\n\n")
			continue
		}
		for _, d := range res.Detected {
			line := "- **" + d.ConstatID + "**"
			if d.Section != "" {
				line += fmt.Sprintf(" (section %s)", d.Section)
			}
			if data, ok := res.Data[d.ConstatID]; ok && len(data.Rules) > 0 {
				line += ": " + strings.Join(data.Rules, ", ")
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## BWAT score\n\n")
	fmt.Fprintf(&sb, "Total **%g**: %s\n\n", r.Score.Total, r.Score.Label)
	if len(r.Score.Parts) > 0 {
		sb.WriteString("| Table | Policy | Points |\n|---|---|---|\n")
		for _, p := range r.Score.Parts {
			points := "-"
			if p.Answered {
				points = fmt.Sprintf("%g", p.Points)
			}
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", p.TableID, p.Policy, points)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Validation\n\n")
	if !r.Validation.HasErrors() {
		sb.WriteString("All answers are within their declared bounds.\n")
	} else {
		for _, id := range r.validationIDs() {
			for _, e := range r.Validation[id] {
				fmt.Fprintf(&sb, "- `%s` %s: %s\n", id, e.Rule, e.Message)
			}
		}
	}

	return sb.String()
}
