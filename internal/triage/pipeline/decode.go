package pipeline

import (
	"encoding/json"
	"strings"

	"lead-triage/internal/common/errors"
	"lead-triage/internal/common/validation"
	"lead-triage/internal/models"
)

var leadSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"lead_id":      {Type: "string", Nullable: true},
		"company":      {Type: "string", Nullable: true},
		"contact_name": {Type: "string", Nullable: true},
		"notes":        {Type: "string", Nullable: true},
		"painpoints":   {Type: "string", Nullable: true},
	},
	AdditionalProperties: true,
}

var approvalSchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{"suggestion"},
	Properties: map[string]validation.Property{
		"suggestion": {
			Type:     "object",
			Required: []string{"id", "context"},
			Properties: map[string]validation.Property{
				"id": {Type: "string", MinLength: validation.IntPtr(1)},
				"context": {
					Type:     "object",
					Required: []string{"lead_id"},
					Properties: map[string]validation.Property{
						"lead_id":      {Type: "string", MinLength: validation.IntPtr(1)},
						"company":      {Type: "string", Nullable: true},
						"contact_name": {Type: "string", Nullable: true},
					},
				},
				"draft": {
					Type: "object",
					Properties: map[string]validation.Property{
						"subject": {Type: "string", Nullable: true},
						"body":    {Type: "string", Nullable: true},
					},
				},
			},
		},
		"edited_body": {Type: "string", Nullable: true},
	},
	AdditionalProperties: true,
}

// DecodeLead parses a lead document. Unknown keys are ignored and null
// counts as absent; a recognized key holding a non-string is rejected.
func DecodeLead(data []byte) (models.RawLead, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.RawLead{}, errors.NewInputParsingFailedError(err)
	}

	if result := validation.ValidateInput(doc, leadSchema); !result.Valid {
		return models.RawLead{}, errors.NewInvalidLeadError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var lead models.RawLead
	if err := json.Unmarshal(data, &lead); err != nil {
		return models.RawLead{}, errors.NewInputParsingFailedError(err)
	}
	return lead, nil
}

// LeadFromVariables converts already-decoded variables, such as a Zeebe job's.
func LeadFromVariables(vars map[string]interface{}) (models.RawLead, error) {
	data, err := json.Marshal(vars)
	if err != nil {
		return models.RawLead{}, errors.NewInputParsingFailedError(err)
	}
	return DecodeLead(data)
}

// DecodeApproval parses an approval document and rejects it before anything
// is executed when the suggestion, its id, or its lead id is missing.
func DecodeApproval(data []byte) (models.ApprovalRequest, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.ApprovalRequest{}, errors.NewInputParsingFailedError(err)
	}

	if result := validation.ValidateInput(doc, approvalSchema); !result.Valid {
		if result.HasErrors("suggestion.context.lead_id") {
			return models.ApprovalRequest{}, errors.NewMissingLeadIDError(suggestionIDOf(doc))
		}
		return models.ApprovalRequest{}, errors.NewMalformedApprovalError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var req models.ApprovalRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return models.ApprovalRequest{}, errors.NewMalformedApprovalError(err.Error())
	}
	return req, nil
}

func ApprovalFromVariables(vars map[string]interface{}) (models.ApprovalRequest, error) {
	data, err := json.Marshal(vars)
	if err != nil {
		return models.ApprovalRequest{}, errors.NewInputParsingFailedError(err)
	}
	return DecodeApproval(data)
}

// ValidateApproval applies the approval preconditions to an already typed request.
func ValidateApproval(req models.ApprovalRequest) error {
	switch {
	case req.Suggestion == nil:
		return errors.NewMalformedApprovalError("suggestion: required field missing")
	case req.Suggestion.ID == "":
		return errors.NewMalformedApprovalError("suggestion.id: required field missing")
	case req.Suggestion.Context.LeadID == "":
		return errors.NewMissingLeadIDError(req.Suggestion.ID)
	}
	return nil
}

func suggestionIDOf(doc map[string]interface{}) string {
	s, _ := doc["suggestion"].(map[string]interface{})
	id, _ := s["id"].(string)
	return id
}
