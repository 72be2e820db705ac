package actions

import (
	"time"

	"lead-triage/internal/models"
)

const (
	crmStatus        = "Contacted (pending)"
	demoLeadTime     = 2 * time.Hour
	demoDurationMins = 30
)

// Executor simulates the CRM, calendar and outbox integrations. Nothing
// leaves the process; every record is synthesized from the suggestion.
type Executor struct {
	now func() time.Time
}

func NewExecutor(now func() time.Time) *Executor {
	if now == nil {
		now = time.Now
	}
	return &Executor{now: now}
}

func (e *Executor) UpdateCRM(s *models.Suggestion) models.CRMRecord {
	return models.CRMRecord{
		CRMID:     "CRM-" + s.Context.LeadID,
		Company:   s.Context.Company,
		Lead:      s.Context.ContactName,
		Status:    crmStatus,
		CreatedAt: models.FormatTimestamp(e.now()),
	}
}

func (e *Executor) ScheduleCalendar(s *models.Suggestion) models.CalendarEvent {
	return models.CalendarEvent{
		EventID:     "EVT-" + s.Context.LeadID,
		Start:       models.FormatTimestamp(e.now().Add(demoLeadTime)),
		DurationMin: demoDurationMins,
		Title:       "Demo with " + s.Context.Company,
	}
}

// QueueOutbox queues body for the lead contact. The message is never sent.
func (e *Executor) QueueOutbox(s *models.Suggestion, body string) models.OutboxMessage {
	return models.OutboxMessage{
		OutboxID: "OUT-" + s.Context.LeadID,
		To:       s.Context.ContactName,
		Subject:  s.Draft.Subject,
		Body:     body,
		Sent:     false,
		QueuedAt: models.FormatTimestamp(e.now()),
	}
}

// Execute runs all three stubs. They are independent of each other.
func (e *Executor) Execute(s *models.Suggestion, body string) models.ActionResults {
	return models.ActionResults{
		CRM:      e.UpdateCRM(s),
		Calendar: e.ScheduleCalendar(s),
		Outbox:   e.QueueOutbox(s, body),
	}
}
