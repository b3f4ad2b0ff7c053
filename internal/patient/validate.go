package patient

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON names so errors line up with the request body.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks every record constraint.
func (r Record) Validate() error {
	return withBMICheck(check(r), r)
}

// Validate checks the ID and every record constraint.
func (p NewPatient) Validate() error {
	return withBMICheck(check(p), p.Record)
}

// Validate checks the fields present in the patch. The merged record still
// has to pass Record.Validate.
func (u Update) Validate() error {
	return check(u)
}

// withBMICheck adds a height error when the record's height and weight pass
// their own bounds but the ratio overflows. Such a BMI cannot be encoded.
func withBMICheck(err error, r Record) error {
	if r.Height <= 0 || r.Weight <= 0 {
		return err
	}
	raw := r.Weight / (r.Height * r.Height)
	if !math.IsInf(raw, 0) && !math.IsNaN(raw) {
		return err
	}

	fe := FieldError{
		Field:      "height",
		Constraint: "finite_bmi",
		Message:    "height and weight must give a finite bmi",
	}
	if err == nil {
		return &ValidationError{Fields: []FieldError{fe}}
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		verr.Fields = append(verr.Fields, fe)
	}
	return err
}

func check(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, toFieldError(fe))
	}
	return out
}

func toFieldError(fe validator.FieldError) FieldError {
	constraint := fe.Tag()
	if fe.Param() != "" {
		constraint += "=" + fe.Param()
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", fe.Field())
	case "min":
		msg = fmt.Sprintf("%s must not be empty", fe.Field())
	case "gt":
		msg = fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "lt":
		msg = fmt.Sprintf("%s must be less than %s", fe.Field(), fe.Param())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of [%s]", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		msg = fmt.Sprintf("%s failed %s", fe.Field(), constraint)
	}

	return FieldError{
		Field:      fe.Field(),
		Constraint: constraint,
		Message:    msg,
	}
}
