package patient

import "math"

// Verdict classifies a BMI value.
type Verdict string

const (
	VerdictUnderweight Verdict = "Underweight"
	VerdictNormal      Verdict = "Normal"
	VerdictObese       Verdict = "Obese"
)

const (
	underweightBelow = 18.5
	obeseFrom        = 30.0
)

// BMI returns weight / height², rounded to two decimals. A non-positive height
// or an overflowing ratio only occurs in hand-edited stored data and yields 0.
func BMI(height, weight float64) float64 {
	if height <= 0 {
		return 0
	}
	bmi := round2(weight / (height * height))
	if math.IsInf(bmi, 0) || math.IsNaN(bmi) {
		return 0
	}
	return bmi
}

// VerdictFor maps a BMI onto its verdict; the first matching range wins.
func VerdictFor(bmi float64) Verdict {
	switch {
	case bmi < underweightBelow:
		return VerdictUnderweight
	case bmi < obeseFrom:
		return VerdictNormal
	default:
		return VerdictObese
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
