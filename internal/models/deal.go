package models

// DealRecord is one historical deal in the similarity corpus.
type DealRecord struct {
	DealID   string `json:"deal_id"`
	Company  string `json:"company"`
	Industry string `json:"industry"`
	Size     string `json:"size"`
	Summary  string `json:"summary"`
	Outcome  string `json:"outcome"`
}

// SimilarCase is a DealRecord scored against a lead summary. The deal fields
// are flattened next to score on the wire.
type SimilarCase struct {
	Score float64 `json:"score"`
	DealRecord
}
