// Package schemas checks the JSON shape of request bodies before they are decoded.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed candidate.schema.json
var candidateSchemaJSON []byte

var (
	candidateSchemaOnce sync.Once
	candidateSchema     *gojsonschema.Schema
	candidateSchemaErr  error
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Messages returns one "field: message" line per error.
func (ve *ValidationError) Messages() []string {
	out := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		out = append(out, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return out
}

func loadCandidateSchema() (*gojsonschema.Schema, error) {
	candidateSchemaOnce.Do(func() {
		candidateSchema, candidateSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(candidateSchemaJSON))
		if candidateSchemaErr != nil {
			candidateSchemaErr = &SchemaLoadError{
				Path:    "candidate.schema.json",
				Message: "schema could not be compiled",
				Cause:   candidateSchemaErr,
			}
		}
	})
	return candidateSchema, candidateSchemaErr
}

// ValidateCandidateBody checks that body is a JSON object whose known fields
// are strings or null. Field rules are applied later by the validator.
func ValidateCandidateBody(body []byte) error {
	schema, err := loadCandidateSchema()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		// Malformed JSON surfaces here rather than as a schema result.
		return &ValidationError{Errors: []FieldError{{
			Field:   "(root)",
			Message: fmt.Sprintf("request body is not valid JSON: %v", err),
		}}}
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
