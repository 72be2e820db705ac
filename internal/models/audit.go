package models

import "encoding/json"

type AuditEvent string

const (
	EventSuggestionCreated   AuditEvent = "suggestion_created"
	EventApprovedAndExecuted AuditEvent = "approved_and_executed"
)

// AuditEntry is one immutable ledger record. Which payload fields are set
// depends on Event.
type AuditEntry struct {
	Event AuditEvent `json:"event"`

	// suggestion_created
	Detail *Suggestion `json:"detail,omitempty"`

	// approved_and_executed
	SuggestionID   string         `json:"suggestion_id,omitempty"`
	CRMResult      *CRMRecord     `json:"crm_result,omitempty"`
	CalendarResult *CalendarEvent `json:"calendar_result,omitempty"`
	OutboxResult   *OutboxMessage `json:"outbox_result,omitempty"`
	EditedBody     string         `json:"edited_body,omitempty"`

	TS string `json:"ts"`
}

// Clone deep-copies every pointer payload so callers cannot reach ledger state.
func (e AuditEntry) Clone() AuditEntry {
	c := e
	c.Detail = e.Detail.Clone()
	if e.CRMResult != nil {
		v := *e.CRMResult
		c.CRMResult = &v
	}
	if e.CalendarResult != nil {
		v := *e.CalendarResult
		c.CalendarResult = &v
	}
	if e.OutboxResult != nil {
		v := *e.OutboxResult
		c.OutboxResult = &v
	}
	return c
}

type AnalyticsState struct {
	LeadsProcessed int      `json:"leads_processed"`
	AutoActions    int      `json:"auto_actions"`
	Timestamps     []string `json:"timestamps"`
}

// MarshalJSON emits exactly the fields that belong to the entry's event.
func (e AuditEntry) MarshalJSON() ([]byte, error) {
	switch e.Event {
	case EventSuggestionCreated:
		return json.Marshal(struct {
			Event  AuditEvent  `json:"event"`
			Detail *Suggestion `json:"detail"`
			TS     string      `json:"ts"`
		}{e.Event, e.Detail, e.TS})
	case EventApprovedAndExecuted:
		return json.Marshal(struct {
			Event          AuditEvent     `json:"event"`
			SuggestionID   string         `json:"suggestion_id"`
			CRMResult      *CRMRecord     `json:"crm_result"`
			CalendarResult *CalendarEvent `json:"calendar_result"`
			OutboxResult   *OutboxMessage `json:"outbox_result"`
			EditedBody     string         `json:"edited_body"`
			TS             string         `json:"ts"`
		}{e.Event, e.SuggestionID, e.CRMResult, e.CalendarResult, e.OutboxResult, e.EditedBody, e.TS})
	default:
		type plain AuditEntry
		return json.Marshal(plain(e))
	}
}
