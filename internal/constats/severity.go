package constats

import (
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
)

// ResolveSeverity applies every most-severe-only section to detected and
// returns the surviving detections in their original order. Within such a
// section only the detection ranked first by the section's priority order is
// kept; unlisted constats rank last and ties keep the earliest detection.
// The input slice is not modified.
func ResolveSeverity(detected []models.DetectedConstat, sections []models.Section) []models.DetectedConstat {
	winners := make(map[string]int, len(sections)) // section id -> index into detected
	exclusive := make(map[string]models.Section, len(sections))
	for _, s := range sections {
		if s.MostSevereOnly {
			exclusive[s.ID] = s
		}
	}

	for i, d := range detected {
		s, ok := exclusive[d.Section]
		if !ok {
			continue
		}
		best, seen := winners[s.ID]
		if !seen || s.Rank(d.ConstatID) < s.Rank(detected[best].ConstatID) {
			winners[s.ID] = i
		}
	}

	out := make([]models.DetectedConstat, 0, len(detected))
	for i, d := range detected {
		if _, ok := exclusive[d.Section]; ok && winners[d.Section] != i {
			continue
		}
		out = append(out, d)
	}
	return out
}

// pruneData keeps the per-constat data of the surviving detections only.
func pruneData(data map[string]models.ConstatData, kept []models.DetectedConstat) map[string]models.ConstatData {
	out := make(map[string]models.ConstatData, len(kept))
	for _, d := range kept {
		if cd, ok := data[d.ConstatID]; ok {
			out[d.ConstatID] = cd
		}
	}
	return out
}
