package approvesuggestion

import (
	"context"

	"lead-triage/internal/models"
)

type Input struct {
	Request models.ApprovalRequest
}

type Output struct {
	Result *models.ApproveResult
}

func (o *Output) Variables() map[string]interface{} {
	return map[string]interface{}{
		"status":    o.Result.Status,
		"audit":     o.Result.Audit,
		"analytics": o.Result.Analytics,
	}
}

// Pipeline is the part of the triage service this worker drives.
type Pipeline interface {
	ApproveSuggestion(ctx context.Context, req models.ApprovalRequest) (*models.ApproveResult, error)
	RecordFailure(operation string, err error)
}
