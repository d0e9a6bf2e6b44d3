// Package schemas provides JSON Schema validation for story record documents.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// StoryRecordSchema is the repo-relative path of the story record schema.
const StoryRecordSchema = "schemas/story_record.schema.json"

// ResolveSchemaPath attempts to find a schema file by trying multiple common
// path resolutions, so CLI commands work from different working directories
// (including tests). Returns the first path that exists, or empty string.
func ResolveSchemaPath(relativePath string) string {
	candidates := []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	}

	for _, candidate := range candidates {
		if absPath, err := filepath.Abs(candidate); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	return ""
}

// ValidationError represents a schema validation failure with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
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

// ValidateStoryRecord validates raw story record JSON against the story
// record schema. A failure is returned as *ValidationError so callers can
// report per-field problems.
func ValidateStoryRecord(document []byte) error {
	schemaPath := ResolveSchemaPath(StoryRecordSchema)
	if schemaPath == "" {
		return &SchemaLoadError{Path: StoryRecordSchema, Message: "schema file not found"}
	}
	return ValidateBytes(schemaPath, document)
}

// ValidateBytes validates a JSON document against the schema at schemaPath.
func ValidateBytes(schemaPath string, document []byte) error {
	schemaLoader := gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(schemaPath))
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{Path: schemaPath, Message: "failed to validate", Cause: err}
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
