package models

type Plan struct {
	RecommendedAction string `json:"recommended_action"`
	ETA               string `json:"eta"`
	Rationale         string `json:"rationale"`
}

type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Suggestion struct {
	ID        string        `json:"id"`
	Context   Context       `json:"context"`
	Similar   []SimilarCase `json:"similar"`
	Plan      Plan          `json:"plan"`
	Draft     Draft         `json:"draft"`
	CreatedAt string        `json:"created_at"`
}

// Clone returns a copy that shares no mutable state with s.
func (s *Suggestion) Clone() *Suggestion {
	if s == nil {
		return nil
	}
	c := *s
	if s.Similar != nil {
		c.Similar = make([]SimilarCase, len(s.Similar))
		copy(c.Similar, s.Similar)
	}
	return &c
}

// ApprovalRequest is what a reviewer sends back. EditedBody replaces the
// draft body in the outbox when non-empty.
type ApprovalRequest struct {
	Suggestion *Suggestion `json:"suggestion"`
	EditedBody string      `json:"edited_body,omitempty"`
}

type CreateResult struct {
	Suggestion *Suggestion    `json:"suggestion"`
	Analytics  AnalyticsState `json:"analytics"`
}

const StatusOK = "ok"

type ApproveResult struct {
	Status    string         `json:"status"`
	Audit     AuditEntry     `json:"audit"`
	Analytics AnalyticsState `json:"analytics"`
}

type AuditWindow struct {
	Audit []AuditEntry `json:"audit"`
}
