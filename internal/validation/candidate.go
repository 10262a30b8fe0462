// Package validation checks candidate submissions against field-level rules.
package validation

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/jonathan/candidate-intake/internal/types"
)

// fieldLabels maps struct field names to the labels used in messages.
var fieldLabels = map[string]string{
	"FirstName":   "First Name",
	"LastName":    "Last Name",
	"Email":       "Email",
	"LinkedInURL": "LinkedIn Url",
	"GitHubURL":   "GitHub Url",
}

// blankAlsoFails lists the rules still reported for a field that is blank.
// An empty email is both missing and not an address.
var blankAlsoFails = map[string]string{
	"Email": "email",
}

// CandidateValidator applies the candidate field rules.
// It is safe for concurrent use.
type CandidateValidator struct {
	validate *validator.Validate
}

// NewCandidateValidator builds a validator with the custom "notblank" and "absurl" tags registered.
func NewCandidateValidator() *CandidateValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("absurl", isAbsoluteURL)
	return &CandidateValidator{validate: v}
}

// Validate returns one message per violated rule, in field declaration order.
// An empty slice means the input passed.
func (cv *CandidateValidator) Validate(input types.CandidateInput) []string {
	err := cv.validate.Struct(input)
	if err == nil {
		return []string{}
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, message(fe.StructField(), fe.Tag()))
		if fe.Tag() == "notblank" {
			if tag, ok := blankAlsoFails[fe.StructField()]; ok {
				messages = append(messages, message(fe.StructField(), tag))
			}
		}
	}
	return messages
}

// Check returns a *Error listing every violated rule, or nil when the input passed.
func (cv *CandidateValidator) Check(input types.CandidateInput) error {
	if messages := cv.Validate(input); len(messages) > 0 {
		return &Error{Messages: messages}
	}
	return nil
}

func message(field, tag string) string {
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}

	switch tag {
	case "required", "notblank":
		return fmt.Sprintf("'%s' must not be empty.", label)
	case "email":
		return fmt.Sprintf("'%s' is not a valid email address.", label)
	case "absurl":
		return fmt.Sprintf("'%s' must be a valid absolute URL.", label)
	default:
		return fmt.Sprintf("'%s' failed the '%s' rule.", label, tag)
	}
}

// isAbsoluteURL accepts URLs with a scheme and either a host or an opaque part,
// e.g. https://github.com/x or mailto:someone@example.com.
func isAbsoluteURL(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	raw := strings.TrimSpace(field.String())
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && (u.Host != "" || u.Opaque != "")
}
