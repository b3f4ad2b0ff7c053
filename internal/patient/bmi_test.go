package patient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBMI(t *testing.T) {
	tests := []struct {
		name     string
		height   float64
		weight   float64
		expected float64
	}{
		{name: "typical adult", height: 1.75, weight: 70, expected: 22.86},
		{name: "rounds to two decimals", height: 1.8, weight: 81, expected: 25},
		{name: "heavy", height: 1.6, weight: 90, expected: 35.16},
		{name: "zero height from legacy data", height: 0, weight: 80, expected: 0},
		{name: "overflow from legacy data", height: 1e-200, weight: 70, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, BMI(tt.height, tt.weight), 1e-9)
		})
	}
}

func TestVerdictForBoundaries(t *testing.T) {
	tests := []struct {
		bmi      float64
		expected Verdict
	}{
		{bmi: 10, expected: VerdictUnderweight},
		{bmi: 18.499, expected: VerdictUnderweight},
		{bmi: 18.5, expected: VerdictNormal},
		{bmi: 24.99, expected: VerdictNormal},
		{bmi: 25, expected: VerdictNormal},
		{bmi: 29.999, expected: VerdictNormal},
		{bmi: 30.0, expected: VerdictObese},
		{bmi: 45, expected: VerdictObese},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, VerdictFor(tt.bmi), "bmi %v", tt.bmi)
	}
}

func TestMaterializeComputesDerivedFields(t *testing.T) {
	rec := Record{Name: "Ana", City: "Lisbon", Age: 30, Gender: GenderFemale, Height: 1.65, Weight: 90}

	p := rec.Materialize("P001")

	assert.Equal(t, "P001", p.ID)
	assert.Equal(t, rec, p.Record)
	assert.InDelta(t, 33.06, p.BMI, 1e-9)
	assert.Equal(t, VerdictObese, p.Verdict)
}
