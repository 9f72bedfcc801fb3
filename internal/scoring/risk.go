package scoring

import (
	"fmt"
	"sort"
)

// RiskOption is one selectable level of a scale dimension.
type RiskOption struct {
	ID     string
	Label  string
	Points int
}

// Dimension is one rated aspect of a risk scale.
type Dimension struct {
	ID      string
	Label   string
	Options []RiskOption
}

// Tier is a risk level covering totals in [Min, Max].
type Tier struct {
	ID          string
	Label       string
	Description string
	Min, Max    int
}

// Scale is a pressure-injury risk scale. Tiers are listed from lowest to
// highest total.
type Scale struct {
	ID         string
	Label      string
	Dimensions []Dimension
	Tiers      []Tier
}

// Dimension returns the dimension with the given id.
func (s *Scale) Dimension(id string) (Dimension, bool) {
	for _, d := range s.Dimensions {
		if d.ID == id {
			return d, true
		}
	}
	return Dimension{}, false
}

// Classify returns the tier covering total.
func (s *Scale) Classify(total int) (Tier, bool) {
	for _, t := range s.Tiers {
		if total >= t.Min && total <= t.Max {
			return t, true
		}
	}
	return Tier{}, false
}

func levels(labels ...string) []RiskOption {
	out := make([]RiskOption, len(labels))
	for i, l := range labels {
		out[i] = RiskOption{ID: fmt.Sprint(i + 1), Label: l, Points: i + 1}
	}
	return out
}

func pediatricLevels(labels ...string) []RiskOption {
	out := make([]RiskOption, len(labels))
	for i, l := range labels {
		out[i] = RiskOption{ID: fmt.Sprint(i), Label: l, Points: i}
	}
	return out
}

// BradenAdult is the adult Braden scale. Lower totals mean higher risk, so
// tiers run from very high risk (6-9) up to no risk (19-23).
func BradenAdult() *Scale {
	return &Scale{
		ID:    "braden",
		Label: "Braden scale (adult)",
		Dimensions: []Dimension{
			{ID: "sensory", Label: "Sensory perception", Options: levels("Completely limited", "Very limited", "Slightly limited", "No impairment")},
			{ID: "moisture", Label: "Moisture", Options: levels("Constantly moist", "Very moist", "Occasionally moist", "Rarely moist")},
			{ID: "activity", Label: "Activity", Options: levels("Bedfast", "Chairfast", "Walks occasionally", "Walks frequently")},
			{ID: "mobility", Label: "Mobility", Options: levels("Completely immobile", "Very limited", "Slightly limited", "No limitation")},
			{ID: "nutrition", Label: "Nutrition", Options: levels("Very poor", "Probably inadequate", "Adequate", "Excellent")},
			{ID: "friction", Label: "Friction and shear", Options: levels("Problem", "Potential problem", "No apparent problem")},
		},
		Tiers: []Tier{
			{ID: "very_high", Label: "Very high risk", Description: "Reposition every 2 hours, pressure-redistribution surface, daily skin inspection", Min: 6, Max: 9},
			{ID: "high", Label: "High risk", Description: "Turning schedule, heel offloading, pressure-redistribution surface", Min: 10, Max: 12},
			{ID: "moderate", Label: "Moderate risk", Description: "Turning schedule with 30-degree lateral positioning", Min: 13, Max: 14},
			{ID: "low", Label: "Mild risk", Description: "Mobilise, protect heels, manage moisture and nutrition", Min: 15, Max: 18},
			{ID: "none", Label: "No risk", Description: "Reassess on change of condition", Min: 19, Max: 23},
		},
	}
}

// BradenPediatric is the pediatric variant. Each level scores the worse
// condition higher, so totals rise with risk: tiers run from no risk (0-6)
// up to very high risk (22-28).
func BradenPediatric() *Scale {
	return &Scale{
		ID:    "braden_q",
		Label: "Braden Q scale (pediatric)",
		Dimensions: []Dimension{
			{ID: "mobility", Label: "Mobility", Options: pediatricLevels("No limitation", "Slightly limited", "Very limited", "Completely immobile", "Immobile and unable to reposition")},
			{ID: "activity", Label: "Activity", Options: pediatricLevels("Age-appropriate activity", "Walks occasionally", "Chairfast", "Bedfast", "Bedfast with restraints")},
			{ID: "sensory", Label: "Sensory perception", Options: pediatricLevels("No impairment", "Slightly limited", "Very limited", "Completely limited", "Unresponsive")},
			{ID: "moisture", Label: "Moisture", Options: pediatricLevels("Rarely moist", "Occasionally moist", "Very moist", "Constantly moist", "Saturated")},
			{ID: "friction", Label: "Friction and shear", Options: pediatricLevels("No apparent problem", "Potential problem", "Problem", "Significant problem", "Severe problem")},
			{ID: "nutrition", Label: "Nutrition", Options: pediatricLevels("Excellent", "Adequate", "Inadequate", "Very poor", "Nil by mouth")},
			{ID: "perfusion", Label: "Tissue perfusion and oxygenation", Options: pediatricLevels("Excellent", "Adequate", "Compromised", "Extremely compromised", "Critical")},
		},
		Tiers: []Tier{
			{ID: "none", Label: "No risk", Description: "Reassess on change of condition", Min: 0, Max: 6},
			{ID: "low", Label: "Mild risk", Description: "Age-appropriate mobilisation, skin care", Min: 7, Max: 11},
			{ID: "moderate", Label: "Moderate risk", Description: "Repositioning schedule, check device contact points", Min: 12, Max: 16},
			{ID: "high", Label: "High risk", Description: "Pressure-redistribution surface, reposition every 2 hours", Min: 17, Max: 21},
			{ID: "very_high", Label: "Very high risk", Description: "Specialist review, hourly device and skin checks", Min: 22, Max: 28},
		},
	}
}

// Calculator accumulates one selection per dimension of a scale.
// It is not safe for concurrent use.
type Calculator struct {
	scale      *Scale
	selections map[string]RiskOption
}

// NewCalculator creates an empty calculator for scale.
func NewCalculator(scale *Scale) *Calculator {
	return &Calculator{scale: scale, selections: make(map[string]RiskOption)}
}

// Scale returns the scale being calculated.
func (c *Calculator) Scale() *Scale { return c.scale }

// Select records the option chosen for a dimension, replacing any previous one.
func (c *Calculator) Select(dimensionID, optionID string) error {
	dim, ok := c.scale.Dimension(dimensionID)
	if !ok {
		return fmt.Errorf("scale %s has no dimension %q", c.scale.ID, dimensionID)
	}
	for _, opt := range dim.Options {
		if opt.ID == optionID {
			c.selections[dimensionID] = opt
			return nil
		}
	}
	return fmt.Errorf("dimension %s has no option %q", dimensionID, optionID)
}

// Clear removes the selection of one dimension.
func (c *Calculator) Clear(dimensionID string) {
	delete(c.selections, dimensionID)
}

// Selections returns dimension id -> chosen option id.
func (c *Calculator) Selections() map[string]string {
	out := make(map[string]string, len(c.selections))
	for dim, opt := range c.selections {
		out[dim] = opt.ID
	}
	return out
}

// Missing returns the dimensions still without a selection, in scale order.
func (c *Calculator) Missing() []string {
	var out []string
	for _, d := range c.scale.Dimensions {
		if _, ok := c.selections[d.ID]; !ok {
			out = append(out, d.ID)
		}
	}
	return out
}

// Total returns the running sum of the selected points.
func (c *Calculator) Total() int {
	total := 0
	for _, opt := range c.selections {
		total += opt.Points
	}
	return total
}

// Tier classifies the running total. It reports false until at least one
// dimension is selected.
func (c *Calculator) Tier() (Tier, bool) {
	if len(c.selections) == 0 {
		return Tier{}, false
	}
	return c.scale.Classify(c.Total())
}

// IsComplete reports whether every dimension has a selection.
func (c *Calculator) IsComplete() bool {
	return len(c.selections) == len(c.scale.Dimensions)
}

// Reset drops every selection.
func (c *Calculator) Reset() {
	c.selections = make(map[string]RiskOption)
}

// ScaleByID returns a known scale.
func ScaleByID(id string) (*Scale, error) {
	scales := map[string]func() *Scale{
		"adult":     BradenAdult,
		"braden":    BradenAdult,
		"pediatric": BradenPediatric,
		"braden_q":  BradenPediatric,
	}
	build, ok := scales[id]
	if !ok {
		names := make([]string, 0, len(scales))
		for name := range scales {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown risk scale %q (known: %v)", id, names)
	}
	return build(), nil
}
