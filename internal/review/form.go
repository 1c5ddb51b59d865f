package review

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Form is the payload of a new review submission.
type Form struct {
	CompanyName    string `json:"companyName" validate:"required,max=100"`
	InternshipName string `json:"internshipName" validate:"required,max=100"`
	Period         string `json:"period" validate:"required,max=50"`
	Rating         int    `json:"rating" validate:"required,min=1,max=5"`
	GoodPoints     string `json:"goodPoints" validate:"required,max=1000"`
	Concerns       string `json:"concerns" validate:"required,max=1000"`
	Tags           string `json:"tags" validate:"max=200"`
	Recommended    bool   `json:"recommended"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Normalize trims surrounding whitespace from every text field.
func (f Form) Normalize() Form {
	f.CompanyName = strings.TrimSpace(f.CompanyName)
	f.InternshipName = strings.TrimSpace(f.InternshipName)
	f.Period = strings.TrimSpace(f.Period)
	f.GoodPoints = strings.TrimSpace(f.GoodPoints)
	f.Concerns = strings.TrimSpace(f.Concerns)
	f.Tags = strings.TrimSpace(f.Tags)
	return f
}

// Validate checks the normalized form and returns a *ValidationError listing
// every rejected field, or nil.
func (f Form) Validate() error {
	err := formValidator().Struct(f.Normalize())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Msg: err.Error()}
	}
	out := &ValidationError{Msg: "invalid review"}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Msg: fieldMessage(fe)})
	}
	return out
}

// SplitTags turns the comma separated tag input into a clean list. Blank
// entries and case-insensitive repeats are dropped.
func (f Form) SplitTags() []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range strings.Split(f.Tags, ",") {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch {
	case fe.Field() == "rating":
		return "rating must be between 1 and 5"
	case fe.Tag() == "required":
		return "is required"
	case fe.Tag() == "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}
