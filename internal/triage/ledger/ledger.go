package ledger

import (
	"context"
	"sync"
	"time"

	"lead-triage/internal/common/logger"
	"lead-triage/internal/common/metrics"
	"lead-triage/internal/models"
)

const (
	DefaultMirrorBuffer = 256
	DefaultWriteTimeout = 2 * time.Second
)

// Approval is what RecordApproval appends for one executed suggestion.
// EditedBody is the body actually queued to the outbox.
type Approval struct {
	SuggestionID string
	Results      models.ActionResults
	EditedBody   string
}

type Options struct {
	Logger       logger.Logger
	Clock        func() time.Time
	Sinks        []Sink
	MirrorBuffer int
	WriteTimeout time.Duration
}

// Ledger owns the analytics counters and the append-only audit log. Every
// mutation holds mu for its whole duration, so a counter and the entry that
// accounts for it are always observed together.
type Ledger struct {
	mu             sync.Mutex
	leadsProcessed int
	autoActions    int
	timestamps     []string
	entries        []models.AuditEntry
	closed         bool

	now    func() time.Time
	logger logger.Logger

	sinks        []Sink
	queue        chan models.AuditEntry
	done         chan struct{}
	writeTimeout time.Duration
}

func New(opts Options) *Ledger {
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.MirrorBuffer <= 0 {
		opts.MirrorBuffer = DefaultMirrorBuffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}

	l := &Ledger{
		now:          opts.Clock,
		logger:       opts.Logger.WithFields(map[string]interface{}{"component": "ledger"}),
		sinks:        opts.Sinks,
		writeTimeout: opts.WriteTimeout,
		timestamps:   []string{},
	}

	if len(l.sinks) > 0 {
		l.queue = make(chan models.AuditEntry, opts.MirrorBuffer)
		l.done = make(chan struct{})
		go l.mirror()
	}

	return l
}

// RecordCreation logs a suggestion_created entry embedding a copy of s and
// returns the analytics as of that entry.
func (l *Ledger) RecordCreation(ctx context.Context, s *models.Suggestion) models.AnalyticsState {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := models.FormatTimestamp(l.now())
	l.leadsProcessed++
	l.timestamps = append(l.timestamps, ts)

	l.appendLocked(models.AuditEntry{
		Event:  models.EventSuggestionCreated,
		Detail: s.Clone(),
		TS:     ts,
	})

	return l.snapshotLocked()
}

// RecordApproval logs an approved_and_executed entry. Repeat approvals of the
// same suggestion are recorded again.
func (l *Ledger) RecordApproval(ctx context.Context, a Approval) (models.AuditEntry, models.AnalyticsState) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.autoActions++

	crm, cal, out := a.Results.CRM, a.Results.Calendar, a.Results.Outbox
	entry := models.AuditEntry{
		Event:          models.EventApprovedAndExecuted,
		SuggestionID:   a.SuggestionID,
		CRMResult:      &crm,
		CalendarResult: &cal,
		OutboxResult:   &out,
		EditedBody:     a.EditedBody,
		TS:             models.FormatTimestamp(l.now()),
	}
	l.appendLocked(entry)

	return entry.Clone(), l.snapshotLocked()
}

func (l *Ledger) appendLocked(entry models.AuditEntry) {
	l.entries = append(l.entries, entry)
	metrics.AuditEntries.Set(float64(len(l.entries)))

	if l.queue == nil || l.closed {
		return
	}
	select {
	case l.queue <- entry.Clone():
	default:
		metrics.AuditMirrorFailures.WithLabelValues("queue").Inc()
		l.logger.Warn("audit mirror queue full, entry not mirrored", map[string]interface{}{
			"event": string(entry.Event),
			"ts":    entry.TS,
		})
	}
}

func (l *Ledger) snapshotLocked() models.AnalyticsState {
	ts := make([]string, len(l.timestamps))
	copy(ts, l.timestamps)
	return models.AnalyticsState{
		LeadsProcessed: l.leadsProcessed,
		AutoActions:    l.autoActions,
		Timestamps:     ts,
	}
}

func (l *Ledger) Analytics() models.AnalyticsState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// RecentAudit returns up to the last n entries, oldest first.
func (l *Ledger) RecentAudit(n int) []models.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 {
		return []models.AuditEntry{}
	}
	start := len(l.entries) - n
	if start < 0 {
		start = 0
	}

	out := make([]models.AuditEntry, 0, len(l.entries)-start)
	for _, e := range l.entries[start:] {
		out = append(out, e.Clone())
	}
	return out
}

// Len is the total number of entries ever recorded.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Ledger) mirror() {
	defer close(l.done)
	for entry := range l.queue {
		for _, sink := range l.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), l.writeTimeout)
			err := sink.Write(ctx, entry)
			cancel()
			if err != nil {
				metrics.AuditMirrorFailures.WithLabelValues(sink.Name()).Inc()
				l.logger.Warn("audit mirror write failed", map[string]interface{}{
					"sink":  sink.Name(),
					"event": string(entry.Event),
					"error": err,
				})
			}
		}
	}
}

// Close stops accepting mirror work and waits for queued entries to reach the
// sinks, or for ctx to end. Recording after Close still updates memory.
func (l *Ledger) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.closed || l.queue == nil {
		l.closed = true
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	select {
	case <-l.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	var firstErr error
	for _, sink := range l.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
