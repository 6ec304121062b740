// Package schemas validates extracted records against the JSON Schemas in
// the repository's schemas directory.
package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema files, relative to the repository root.
const (
	JobRecordSchema     = "schemas/job_record.schema.json"
	ProfileRecordSchema = "schemas/profile_record.schema.json"
)

// ResolveSchemaPath finds relativePath from the working directory or up to
// two parents, so commands and tests resolve it from any package. It
// returns "" when nothing exists.
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

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is one violation at a field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError is a failure to load or compile the schema itself.
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

// Validator holds a compiled schema for repeated validation, such as a batch
// of scraped jobs.
type Validator struct {
	path   string
	schema *gojsonschema.Schema
}

// Load compiles the schema at path. A relative path is resolved with
// ResolveSchemaPath.
func Load(path string) (*Validator, error) {
	absPath := path
	if !filepath.IsAbs(path) {
		if absPath = ResolveSchemaPath(path); absPath == "" {
			return nil, &SchemaLoadError{Path: path, Message: "schema file not found"}
		}
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, &SchemaLoadError{Path: absPath, Message: "schema file not found", Cause: err}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(absPath)))
	if err != nil {
		return nil, &SchemaLoadError{Path: absPath, Message: "invalid schema", Cause: err}
	}
	return &Validator{path: absPath, schema: schema}, nil
}

// Validate checks v, encoded with its own MarshalJSON, against the schema.
func (v *Validator) Validate(value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return v.ValidateBytes(data)
}

// ValidateBytes checks a JSON document against the schema.
func (v *Validator) ValidateBytes(data []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}
	return resultError(result)
}

// ValidateJSON validates the JSON file at jsonPath against the schema file
// at schemaPath.
func ValidateJSON(schemaPath, jsonPath string) error {
	jsonAbsPath, err := filepath.Abs(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}
	data, err := os.ReadFile(jsonAbsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("JSON file not found: %s", jsonAbsPath)
		}
		return fmt.Errorf("failed to read %s: %w", jsonAbsPath, err)
	}

	schemaAbsPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to resolve schema path: %w", err)
	}
	validator, err := Load(schemaAbsPath)
	if err != nil {
		return err
	}
	return validator.ValidateBytes(data)
}

// ValidateJSONString validates JSON content against schema content.
func ValidateJSONString(schemaContent, jsonContent string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaContent),
		gojsonschema.NewStringLoader(jsonContent),
	)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return resultError(result)
}

func resultError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}
	validationErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
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
