package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/portfolio/backend/internal/model"
)

// emailPattern accepts the simple local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic("service: register contactemail: " + err.Error())
	}
	return v
}

// contactForm carries validation rules; fields are checked in declaration order.
type contactForm struct {
	Name    string `validate:"required,max=200"`
	Email   string `validate:"required,contactemail"`
	Message string `validate:"required,max=5000"`
}

// NormalizeSubmission trims every field and lower-cases the email.
func NormalizeSubmission(s model.ContactSubmission) model.ContactSubmission {
	return model.ContactSubmission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.ToLower(strings.TrimSpace(s.Email)),
		Message: strings.TrimSpace(s.Message),
	}
}

// ValidateSubmission checks an already normalised submission.
func ValidateSubmission(s model.ContactSubmission) error {
	err := validate.Struct(contactForm{Name: s.Name, Email: s.Email, Message: s.Message})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "form", Reason: err.Error()}
	}

	// Missing fields take precedence over format problems.
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return &ValidationError{Field: strings.ToLower(fe.Field()), Reason: ReasonMissing}
		}
	}
	fe := verrs[0]
	reason := ReasonInvalidEmail
	if fe.Tag() == "max" {
		reason = ReasonTooLong
	}
	return &ValidationError{Field: strings.ToLower(fe.Field()), Reason: reason}
}
