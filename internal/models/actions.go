package models

type CRMRecord struct {
	CRMID     string `json:"crm_id"`
	Company   string `json:"company"`
	Lead      string `json:"lead"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type CalendarEvent struct {
	EventID     string `json:"event_id"`
	Start       string `json:"start"`
	DurationMin int    `json:"duration_min"`
	Title       string `json:"title"`
}

type OutboxMessage struct {
	OutboxID string `json:"outbox_id"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Sent     bool   `json:"sent"`
	QueuedAt string `json:"queued_at"`
}

// ActionResults bundles the three downstream stub outputs for one approval.
type ActionResults struct {
	CRM      CRMRecord
	Calendar CalendarEvent
	Outbox   OutboxMessage
}
