package patient

// Update is a merge-patch: nil fields leave the stored value untouched. Any
// id in the body is ignored; the path decides which record is edited.
type Update struct {
	Name   *string  `json:"name,omitempty" validate:"omitnil,min=1"`
	City   *string  `json:"city,omitempty" validate:"omitnil,min=1"`
	Age    *int     `json:"age,omitempty" validate:"omitnil,gt=0"`
	Gender *Gender  `json:"gender,omitempty" validate:"omitnil,oneof=male female other"`
	Height *float64 `json:"height,omitempty" validate:"omitnil,gt=0"`
	Weight *float64 `json:"weight,omitempty" validate:"omitnil,gt=0"`
}

// IsEmpty reports whether the patch carries no fields.
func (u Update) IsEmpty() bool {
	return u.Name == nil && u.City == nil && u.Age == nil &&
		u.Gender == nil && u.Height == nil && u.Weight == nil
}

// Merge returns existing with every present patch field applied.
func Merge(existing Record, u Update) Record {
	merged := existing
	if u.Name != nil {
		merged.Name = *u.Name
	}
	if u.City != nil {
		merged.City = *u.City
	}
	if u.Age != nil {
		merged.Age = *u.Age
	}
	if u.Gender != nil {
		merged.Gender = *u.Gender
	}
	if u.Height != nil {
		merged.Height = *u.Height
	}
	if u.Weight != nil {
		merged.Weight = *u.Weight
	}
	return merged
}
