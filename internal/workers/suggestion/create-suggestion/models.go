package createsuggestion

import (
	"context"

	"lead-triage/internal/models"
)

// Input is the lead carried in the job variables.
type Input struct {
	Lead models.RawLead
}

type Output struct {
	Result *models.CreateResult
}

// Variables are the process variables set when the job completes.
func (o *Output) Variables() map[string]interface{} {
	return map[string]interface{}{
		"suggestion": o.Result.Suggestion,
		"analytics":  o.Result.Analytics,
	}
}

// Pipeline is the part of the triage service this worker drives.
type Pipeline interface {
	CreateSuggestion(ctx context.Context, lead models.RawLead) (*models.CreateResult, error)
	RecordFailure(operation string, err error)
}
