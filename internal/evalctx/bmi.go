package evalctx

// BMICategory is one of the six ordered BMI classes.
type BMICategory struct {
	ID    string
	Label string
	Min   float64 // inclusive lower bound
}

// BMICategories are ordered by ascending lower bound.
var BMICategories = []BMICategory{
	{ID: "underweight", Label: "Underweight", Min: 0},
	{ID: "normal", Label: "Normal weight", Min: 18.5},
	{ID: "overweight", Label: "Overweight", Min: 25},
	{ID: "obesity_class_1", Label: "Obesity class I", Min: 30},
	{ID: "obesity_class_2", Label: "Obesity class II", Min: 35},
	{ID: "obesity_class_3", Label: "Obesity class III", Min: 40},
}

// ClassifyBMI returns the category containing bmi. Each bound belongs to the
// category it opens, so 18.5 is normal and 30 is obesity class I; anything
// below 18.5 (including non-positive input) is underweight.
func ClassifyBMI(bmi float64) BMICategory {
	for i := len(BMICategories) - 1; i > 0; i-- {
		if bmi >= BMICategories[i].Min {
			return BMICategories[i]
		}
	}
	return BMICategories[0]
}
