// Package profile loads and validates structured candidate profiles.
// File-format ingestion (PDF, DOCX, LinkedIn exports) happens outside this
// system; whatever produces the profile must satisfy the JSON Schema embedded
// here, which is the boundary contract for all evidence entering the pipeline.
package profile

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/martin/tailorproof/internal/types"
)

//go:embed candidate_profile.schema.json
var profileSchema []byte

// LoadError represents an error reading or parsing a profile file.
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("profile validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Load reads a candidate profile from a JSON file, validates it against the
// embedded schema, and unmarshals it.
func Load(path string) (*types.CandidateProfile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read profile %s", path),
			Cause:   err,
		}
	}

	return Parse(content)
}

// Parse validates and unmarshals profile JSON supplied directly (the API
// server hands request bodies straight to this).
func Parse(content []byte) (*types.CandidateProfile, error) {
	if err := validateSchema(content); err != nil {
		return nil, err
	}

	var prof types.CandidateProfile
	if err := json.Unmarshal(content, &prof); err != nil {
		return nil, &LoadError{
			Message: "failed to unmarshal profile JSON",
			Cause:   err,
		}
	}

	return &prof, nil
}

// validateSchema checks the raw JSON against the embedded profile schema.
func validateSchema(content []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(profileSchema)
	documentLoader := gojsonschema.NewBytesLoader(content)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &LoadError{
			Message: "failed to run schema validation",
			Cause:   err,
		}
	}

	if !result.Valid() {
		ve := &ValidationError{}
		for _, desc := range result.Errors() {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   desc.Field(),
				Message: desc.Description(),
			})
		}
		return ve
	}

	return nil
}
