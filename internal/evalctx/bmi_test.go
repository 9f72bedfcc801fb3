package evalctx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBMI_Boundaries(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{-3, "underweight"},
		{18.4, "underweight"},
		{18.5, "normal"},
		{24.9, "normal"},
		{25.0, "overweight"},
		{29.9, "overweight"},
		{30.0, "obesity_class_1"},
		{34.9, "obesity_class_1"},
		{35.0, "obesity_class_2"},
		{39.9, "obesity_class_2"},
		{40.0, "obesity_class_3"},
		{75, "obesity_class_3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyBMI(tt.bmi).ID, "bmi %v", tt.bmi)
	}
}

func TestClassifyBMI_TotalPartition(t *testing.T) {
	for bmi := 0.0; bmi < 60; bmi += 0.05 {
		cat := ClassifyBMI(bmi)
		matches := 0
		for i, c := range BMICategories {
			upper := math.Inf(1)
			if i+1 < len(BMICategories) {
				upper = BMICategories[i+1].Min
			}
			if bmi >= c.Min && bmi < upper {
				matches++
				assert.Equal(t, c.ID, cat.ID)
			}
		}
		assert.Equal(t, 1, matches, "bmi %v", bmi)
	}
}

func TestComputeBMI(t *testing.T) {
	bmi, ok := ComputeBMI(70, 170)
	assert.True(t, ok)
	assert.Equal(t, 24.2, bmi)

	_, ok = ComputeBMI(70, 0)
	assert.False(t, ok)
	_, ok = ComputeBMI(70, -170)
	assert.False(t, ok)
	_, ok = ComputeBMI(0, 170)
	assert.False(t, ok)
}
