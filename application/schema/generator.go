// Package schema provides JSON schema generation utilities for the SDK.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/divvi-xyz/divvi-sdk/go/wireformat"
)

// SubmissionSchemaID identifies the referral submission body schema.
const SubmissionSchemaID = "https://divvi.xyz/schemas/referral-submission.json"

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	return marshal(reflector.Reflect(v))
}

// SubmissionSchema describes the JSON body POSTed to the tracking
// endpoints: either a transaction hash or a message with its signature,
// always with a chain id, and nothing else.
func SubmissionSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	s := reflector.Reflect(&wireformat.ReferralSubmissionWire{})
	s.ID = jsonschema.ID(SubmissionSchemaID)
	s.Title = "Referral submission"
	return marshal(s)
}

func marshal(s *jsonschema.Schema) ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return jsonBytes, nil
}
