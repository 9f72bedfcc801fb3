// Package scoring turns answers into clinical scores: ankle/arm pressure
// ratios, the BWAT composite total and the Braden risk scales.
package scoring

import (
	"fmt"
	"math"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
)

// Band is one interpretation interval of a measured ratio.
type Band struct {
	ID       string
	Label    string
	Color    string
	Severity int // higher is worse; ordered by descending ratio
}

var (
	BandIndeterminate = Band{ID: "indeterminate", Label: "Incompressible arteries, result indeterminate", Color: "purple", Severity: 0}
	BandNormal        = Band{ID: "normal", Label: "Normal", Color: "green", Severity: 1}
	BandBorderline    = Band{ID: "borderline", Label: "Borderline", Color: "yellow", Severity: 2}
	BandMild          = Band{ID: "mild", Label: "Mild arterial disease", Color: "orange", Severity: 3}
	BandModerate      = Band{ID: "moderate", Label: "Moderate arterial disease", Color: "red", Severity: 4}
	BandSevere        = Band{ID: "severe", Label: "Severe arterial disease", Color: "darkred", Severity: 5}
	BandInvalid       = Band{ID: "invalid", Label: "Invalid measurement", Color: "grey", Severity: -1}
)

// RatioBands lists the bands by descending ratio.
var RatioBands = []Band{BandIndeterminate, BandNormal, BandBorderline, BandMild, BandModerate, BandSevere}

// RatioResult is an interpreted ratio. When Valid is false, Ratio is
// meaningless and Err wraps models.ErrInvalidMeasurement.
type RatioResult struct {
	Ratio float64
	Valid bool
	Band  Band
	Err   error
}

// BandByID returns the band with the given id, including BandInvalid.
func BandByID(id string) (Band, bool) {
	if id == BandInvalid.ID {
		return BandInvalid, true
	}
	for _, b := range RatioBands {
		if b.ID == id {
			return b, true
		}
	}
	return Band{}, false
}

// ClassifyRatio maps a ratio to its band:
// >1.40 indeterminate, [1.00,1.40] normal, [0.90,1.00) borderline,
// [0.70,0.90) mild, [0.40,0.70) moderate, <0.40 severe.
func ClassifyRatio(r float64) Band {
	switch {
	case r > 1.40:
		return BandIndeterminate
	case r >= 1.00:
		return BandNormal
	case r >= 0.90:
		return BandBorderline
	case r >= 0.70:
		return BandMild
	case r >= 0.40:
		return BandModerate
	default:
		return BandSevere
	}
}

// InterpretRatio divides numerator by denominator, rounds to two decimals and
// classifies the result. A zero, negative or non-finite operand is invalid.
func InterpretRatio(numerator, denominator float64) RatioResult {
	if !isMeasured(denominator) {
		return invalid(fmt.Errorf("%w: denominator %v", models.ErrInvalidMeasurement, denominator))
	}
	if !isMeasured(numerator) {
		return invalid(fmt.Errorf("%w: numerator %v", models.ErrInvalidMeasurement, numerator))
	}
	ratio := math.Round(numerator/denominator*100) / 100
	return RatioResult{Ratio: ratio, Valid: true, Band: ClassifyRatio(ratio)}
}

func isMeasured(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func invalid(err error) RatioResult {
	return RatioResult{Band: BandInvalid, Err: err}
}

// Pressures are systolic pressures in mmHg. Zero means not measured.
type Pressures struct {
	RightArm   float64
	LeftArm    float64
	RightAnkle float64
	LeftAnkle  float64
}

// ABIResult holds the ankle-brachial index of each leg.
type ABIResult struct {
	Right RatioResult
	Left  RatioResult
}

// InterpretPressures divides each ankle pressure by the higher arm pressure.
func InterpretPressures(p Pressures) ABIResult {
	arm := math.Max(p.RightArm, p.LeftArm)
	return ABIResult{
		Right: InterpretRatio(p.RightAnkle, arm),
		Left:  InterpretRatio(p.LeftAnkle, arm),
	}
}

// Worst returns the valid side with the lower ratio.
func (r ABIResult) Worst() (RatioResult, bool) {
	switch {
	case r.Right.Valid && r.Left.Valid:
		if r.Left.Ratio < r.Right.Ratio {
			return r.Left, true
		}
		return r.Right, true
	case r.Right.Valid:
		return r.Right, true
	case r.Left.Valid:
		return r.Left, true
	default:
		return RatioResult{Band: BandInvalid, Err: models.ErrInvalidMeasurement}, false
	}
}
