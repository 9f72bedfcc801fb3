package evalctx

// Variable names the builder derives. Conditions reference them by name.
const (
	VarAge       = "age"
	VarAgeYears  = "age_years"
	VarAgeMonths = "age_months"
	VarAgeDays   = "age_days"

	VarBMI         = "bmi"
	VarBMICategory = "bmi_category"

	VarWoundAgeDays = "wound_age_days"
	VarWoundChronic = "wound_chronic"
	VarWoundRecent  = "wound_recent"

	VarABI      = "abi"
	VarABIBand  = "abi_band"
	VarABIRight = "abi_right"
	VarABILeft  = "abi_left"

	FlagInfectionSigns        = "infection_signs"
	FlagBiofilmSuspected      = "biofilm_suspected"
	FlagSmoking               = "smoking"
	FlagAutoimmuneDisease     = "autoimmune_disease"
	FlagThyroidDisorder       = "thyroid_disorder"
	FlagNutritionInsufficient = "nutrition_insufficient"
	FlagVascularInadequate    = "vascular_assessment_inadequate"
	FlagHealingMedication     = "medication_affecting_healing"
)

// Flags lists the boolean risk flags. Every built context defines all of
// them, false unless the answers say otherwise.
var Flags = []string{
	FlagInfectionSigns,
	FlagBiofilmSuspected,
	FlagSmoking,
	FlagAutoimmuneDisease,
	FlagThyroidDisorder,
	FlagNutritionInsufficient,
	FlagVascularInadequate,
	FlagHealingMedication,
}

// Variables lists every name the builder can derive.
var Variables = append([]string{
	VarAge, VarAgeYears, VarAgeMonths, VarAgeDays,
	VarBMI, VarBMICategory,
	VarWoundAgeDays, VarWoundChronic, VarWoundRecent,
	VarABI, VarABIBand, VarABIRight, VarABILeft,
}, Flags...)

// IsVariable reports whether name is a derivable variable.
func IsVariable(name string) bool {
	for _, v := range Variables {
		if v == name {
			return true
		}
	}
	return false
}

// Vocabulary names the fields and options the derivations read.
type Vocabulary struct {
	BirthDate  string
	Height     string // cm
	Weight     string // kg
	BMI        string // computed field filled with the derived value
	WoundOnset string

	Smoking       string
	SmokingActive []string

	Conditions string
	Autoimmune string
	Thyroid    string

	Intake             string
	IntakeInsufficient []string
	WeightLoss         string

	LocalSigns    string
	SystemicSigns string
	NoSign        string
	Biofilm       string

	ABIMeasured string
	RightArm    string
	LeftArm     string
	RightAnkle  string
	LeftAnkle   string

	Medications        string
	HealingMedications []string
}

// DefaultVocabulary matches the built-in assessment tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		BirthDate:  "C1T01E02",
		Height:     "C1T02E01",
		Weight:     "C1T02E02",
		BMI:        "C1T02E03",
		WoundOnset: "C2T01E01",

		Smoking:       "C1T03E01",
		SmokingActive: []string{"current"},

		Conditions: "C1T04E01",
		Autoimmune: "autoimmune",
		Thyroid:    "thyroid",

		Intake:             "C1T05E01",
		IntakeInsufficient: []string{"insufficient", "poor"},
		WeightLoss:         "C1T05E02",

		LocalSigns:    "C2T02E01",
		SystemicSigns: "C2T02E02",
		NoSign:        "none",
		Biofilm:       "C2T02E03",

		ABIMeasured: "C2T03E01",
		RightArm:    "C2T03E02",
		LeftArm:     "C2T03E03",
		RightAnkle:  "C2T03E04",
		LeftAnkle:   "C2T03E05",

		Medications:        "C1T06E01",
		HealingMedications: []string{"corticosteroids", "immunosuppressants", "chemotherapy"},
	}
}
