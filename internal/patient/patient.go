// Package patient holds the patient domain model: the persisted record shape,
// validation rules, the derived BMI fields and the merge-patch applied by edits.
package patient

// Gender is one of the enumerated values accepted for a patient.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Record is the value persisted for one patient. The ID is the store key and is
// never stored inside the value.
type Record struct {
	Name   string  `json:"name" validate:"required"`
	City   string  `json:"city" validate:"required"`
	Age    int     `json:"age" validate:"gt=0,lt=120"`
	Gender Gender  `json:"gender" validate:"oneof=male female other"`
	Height float64 `json:"height" validate:"gt=0"`
	Weight float64 `json:"weight" validate:"gt=0"`
}

// NewPatient is the create payload: a full record plus the caller-chosen ID.
type NewPatient struct {
	ID string `json:"id" validate:"required"`
	Record
}

// Patient is a record materialized for output, with its derived fields.
type Patient struct {
	ID string `json:"id"`
	Record
	BMI     float64 `json:"bmi"`
	Verdict Verdict `json:"verdict"`
}

// Materialize attaches the ID and computes bmi and verdict from the current
// height and weight.
func (r Record) Materialize(id string) Patient {
	bmi := BMI(r.Height, r.Weight)
	return Patient{
		ID:      id,
		Record:  r,
		BMI:     bmi,
		Verdict: VerdictFor(bmi),
	}
}

// MaterializeAll materializes every record in the collection.
func MaterializeAll(records map[string]Record) map[string]Patient {
	out := make(map[string]Patient, len(records))
	for id, rec := range records {
		out[id] = rec.Materialize(id)
	}
	return out
}
