package flight

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so issues line up with the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(returnAfterDeparture, SearchParameters{})
	return v
}

func returnAfterDeparture(sl validator.StructLevel) {
	p := sl.Current().Interface().(SearchParameters)
	if p.ReturnDate == "" {
		return
	}
	dep, errDep := time.Parse(dateLayout, p.DepartureDate)
	ret, errRet := time.Parse(dateLayout, p.ReturnDate)
	if errDep != nil || errRet != nil {
		return
	}
	if ret.Before(dep) {
		sl.ReportError(p.ReturnDate, "returnDate", "ReturnDate", "notbeforedeparture", "")
	}
}

// Normalize upper-cases and trims the airport codes so "cgk" and "CGK"
// share a fingerprint.
func (p SearchParameters) Normalize() SearchParameters {
	p.Departure = strings.ToUpper(strings.TrimSpace(p.Departure))
	p.Arrival = strings.ToUpper(strings.TrimSpace(p.Arrival))
	p.DepartureDate = strings.TrimSpace(p.DepartureDate)
	p.ReturnDate = strings.TrimSpace(p.ReturnDate)
	return p
}

// Validate returns a *ValidationError listing every offending field.
func (p SearchParameters) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Issues: []FieldIssue{{Field: "body", Message: err.Error()}}}
	}

	issues := make([]FieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, FieldIssue{
			Field:   fieldPath(fe),
			Message: issueMessage(fe),
		})
	}
	return &ValidationError{Issues: issues}
}

// fieldPath drops the root struct name: "SearchParameters.passengers.adults"
// becomes "passengers.adults".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "alpha":
		return "must contain letters only"
	case "nefield":
		return "must differ from departure"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "notbeforedeparture":
		return "must not be before departureDate"
	}
	return "is invalid"
}

func validateLookup(flightNumber, date string) error {
	var issues []FieldIssue
	if strings.TrimSpace(flightNumber) == "" {
		issues = append(issues, FieldIssue{Field: "flightNumber", Message: "is required"})
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		issues = append(issues, FieldIssue{Field: "date", Message: "must be a date in YYYY-MM-DD format"})
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
