package models

// RawLead is an inbound lead as submitted by the front end. Every field is
// optional; JSON null and "" both mean absent.
type RawLead struct {
	LeadID      string `json:"lead_id,omitempty"`
	Company     string `json:"company,omitempty"`
	ContactName string `json:"contact_name,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Painpoints  string `json:"painpoints,omitempty"`
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityNormal Priority = "Normal"
)

// Valid reports whether p is one of the priorities the planner has a policy for.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityNormal
}

// Context is the normalized view of a lead that the rest of the pipeline reads.
type Context struct {
	LeadID      string   `json:"lead_id"`
	Company     string   `json:"company"`
	ContactName string   `json:"contact_name"`
	Priority    Priority `json:"priority"`
	Summary     string   `json:"summary"`
}
