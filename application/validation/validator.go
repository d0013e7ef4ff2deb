// Package validation checks submission bodies against their JSON schema.
package validation

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/divvi-xyz/divvi-sdk/go/application/schema"
	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/domain/ports"
)

// SubmissionValidator implements ports.BodyValidator using the generated
// submission schema.
type SubmissionValidator struct {
	schema *jsonschema.Schema
}

var _ ports.BodyValidator = (*SubmissionValidator)(nil)

// NewSubmissionValidator compiles the submission schema.
func NewSubmissionValidator() (*SubmissionValidator, error) {
	doc, err := schema.SubmissionSchema()
	if err != nil {
		return nil, err
	}
	return NewSchemaValidator(schema.SubmissionSchemaID, doc)
}

// NewSchemaValidator compiles an arbitrary schema document published under id.
func NewSchemaValidator(id string, doc []byte) (*SubmissionValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(id, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource %s: %w", id, err)
	}
	sch, err := compiler.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", id, err)
	}
	return &SubmissionValidator{schema: sch}, nil
}

// Check validates body and lists every violation.
func (v *SubmissionValidator) Check(body []byte) *entities.ValidationResult {
	result := &entities.ValidationResult{Valid: true}

	obj, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, entities.ValidationError{
			Field:   "",
			Message: fmt.Sprintf("body is not valid JSON: %v", err),
		})
		return result
	}

	if err := v.schema.Validate(obj); err != nil {
		result.Valid = false
		var ve *jsonschema.ValidationError
		if !stdErrors.As(err, &ve) {
			result.Errors = append(result.Errors, entities.ValidationError{Message: err.Error()})
			return result
		}
		for _, be := range ve.BasicOutput().Errors {
			// The root error only repeats that validation failed.
			if be.KeywordLocation == "" {
				continue
			}
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   be.InstanceLocation,
				Message: be.Error,
			})
		}
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, entities.ValidationError{Message: ve.Error()})
		}
	}

	return result
}

// Validate implements ports.BodyValidator.
func (v *SubmissionValidator) Validate(body []byte) error {
	res := v.Check(body)
	if res.Valid {
		return nil
	}
	parts := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		if e.Field == "" {
			parts = append(parts, e.Message)
			continue
		}
		parts = append(parts, e.Field+": "+e.Message)
	}
	return fmt.Errorf("submission body does not match schema: %s", strings.Join(parts, "; "))
}

// ValidateValue marshals v and validates the result.
func (v *SubmissionValidator) ValidateValue(value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	return v.Validate(body)
}
