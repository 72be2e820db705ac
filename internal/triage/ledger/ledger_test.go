package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"lead-triage/internal/common/logger"
	"lead-triage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func testSuggestion(id, leadID string) *models.Suggestion {
	return &models.Suggestion{
		ID: id,
		Context: models.Context{
			LeadID:      leadID,
			Company:     "Acme",
			ContactName: "Jane",
			Priority:    models.PriorityHigh,
			Summary:     "Jane at Acme: cloud | ",
		},
		Similar: []models.SimilarCase{
			{Score: 0.323, DealRecord: models.DealRecord{DealID: "D001"}},
		},
		Plan:      models.Plan{RecommendedAction: "Schedule 30m demo", ETA: "2 hours"},
		Draft:     models.Draft{Subject: "Quick intro — Acme & solution fit", Body: "body"},
		CreatedAt: "2024-03-01T09:00:00.000000Z",
	}
}

func testApproval(id, leadID string) Approval {
	return Approval{
		SuggestionID: id,
		Results: models.ActionResults{
			CRM:      models.CRMRecord{CRMID: "CRM-" + leadID},
			Calendar: models.CalendarEvent{EventID: "EVT-" + leadID, DurationMin: 30},
			Outbox:   models.OutboxMessage{OutboxID: "OUT-" + leadID},
		},
		EditedBody: "edited",
	}
}

func TestLedger_CountersMatchEntries(t *testing.T) {
	clock := newStepClock()
	l := New(Options{Logger: logger.NewTestLogger(t), Clock: clock.Now})
	ctx := context.Background()

	const creates, approvals = 4, 3
	for i := 0; i < creates; i++ {
		l.RecordCreation(ctx, testSuggestion(fmt.Sprintf("s-%d", i), fmt.Sprintf("lead%d", i)))
	}
	for i := 0; i < approvals; i++ {
		l.RecordApproval(ctx, testApproval(fmt.Sprintf("s-%d", i), fmt.Sprintf("lead%d", i)))
	}

	state := l.Analytics()
	assert.Equal(t, creates, state.LeadsProcessed)
	assert.Equal(t, approvals, state.AutoActions)
	assert.Len(t, state.Timestamps, creates)
	assert.Equal(t, "2024-03-01T09:00:01.000000Z", state.Timestamps[0])

	entries := l.RecentAudit(100)
	require.Len(t, entries, creates+approvals)
	for i := 0; i < creates; i++ {
		assert.Equal(t, models.EventSuggestionCreated, entries[i].Event)
		assert.Equal(t, fmt.Sprintf("s-%d", i), entries[i].Detail.ID)
	}
	for i := creates; i < creates+approvals; i++ {
		assert.Equal(t, models.EventApprovedAndExecuted, entries[i].Event)
	}
	assert.Equal(t, creates+approvals, l.Len())
}

func TestLedger_RecordCreationReturnsSnapshot(t *testing.T) {
	l := New(Options{Clock: newStepClock().Now})

	first := l.RecordCreation(context.Background(), testSuggestion("s-1", "lead1"))
	second := l.RecordCreation(context.Background(), testSuggestion("s-2", "lead2"))

	assert.Equal(t, 1, first.LeadsProcessed)
	assert.Len(t, first.Timestamps, 1)
	assert.Equal(t, 2, second.LeadsProcessed)
	assert.Len(t, second.Timestamps, 2)
}

func TestLedger_RecordApproval(t *testing.T) {
	l := New(Options{Clock: newStepClock().Now})
	l.RecordCreation(context.Background(), testSuggestion("s-1", "lead1"))

	entry, state := l.RecordApproval(context.Background(), testApproval("s-1", "lead1"))

	assert.Equal(t, models.EventApprovedAndExecuted, entry.Event)
	assert.Equal(t, "s-1", entry.SuggestionID)
	assert.Equal(t, "CRM-lead1", entry.CRMResult.CRMID)
	assert.Equal(t, "EVT-lead1", entry.CalendarResult.EventID)
	assert.Equal(t, "OUT-lead1", entry.OutboxResult.OutboxID)
	assert.Equal(t, "edited", entry.EditedBody)
	assert.Equal(t, "2024-03-01T09:00:02.000000Z", entry.TS)
	assert.Nil(t, entry.Detail)

	assert.Equal(t, 1, state.LeadsProcessed)
	assert.Equal(t, 1, state.AutoActions)
}

func TestLedger_RepeatApprovalsAreNotDeduplicated(t *testing.T) {
	l := New(Options{})

	l.RecordApproval(context.Background(), testApproval("s-1", "lead1"))
	_, state := l.RecordApproval(context.Background(), testApproval("s-1", "lead1"))

	assert.Equal(t, 2, state.AutoActions)
	assert.Len(t, l.RecentAudit(20), 2)
}

func TestLedger_RecentAuditWindow(t *testing.T) {
	l := New(Options{Clock: newStepClock().Now})
	for i := 1; i <= 25; i++ {
		l.RecordCreation(context.Background(), testSuggestion(fmt.Sprintf("s-%02d", i), "lead"))
	}

	window := l.RecentAudit(20)
	require.Len(t, window, 20)
	assert.Equal(t, "s-06", window[0].Detail.ID)
	assert.Equal(t, "s-25", window[19].Detail.ID)

	assert.Len(t, l.RecentAudit(100), 25)
	assert.Empty(t, l.RecentAudit(0))
	assert.Equal(t, 25, l.Len())
}

func TestLedger_StoredStateIsIsolated(t *testing.T) {
	l := New(Options{})
	s := testSuggestion("s-1", "lead1")

	l.RecordCreation(context.Background(), s)
	s.Draft.Body = "changed after recording"
	s.Similar[0].DealID = "D999"

	got := l.RecentAudit(1)[0]
	assert.Equal(t, "body", got.Detail.Draft.Body)
	assert.Equal(t, "D001", got.Detail.Similar[0].DealID)

	got.Detail.Context.Company = "Tampered"
	assert.Equal(t, "Acme", l.RecentAudit(1)[0].Detail.Context.Company)

	state := l.Analytics()
	state.Timestamps[0] = "tampered"
	assert.NotEqual(t, "tampered", l.Analytics().Timestamps[0])
}

func TestLedger_ConcurrentWriters(t *testing.T) {
	l := New(Options{})
	ctx := context.Background()

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := fmt.Sprintf("s-%d-%d", w, i)
				l.RecordCreation(ctx, testSuggestion(id, "lead"))
				l.RecordApproval(ctx, testApproval(id, "lead"))
				_ = l.Analytics()
				_ = l.RecentAudit(20)
			}
		}(w)
	}
	wg.Wait()

	state := l.Analytics()
	assert.Equal(t, workers*perWorker, state.LeadsProcessed)
	assert.Equal(t, workers*perWorker, state.AutoActions)
	assert.Len(t, state.Timestamps, workers*perWorker)
	assert.Equal(t, 2*workers*perWorker, l.Len())
}

type mockSink struct {
	mock.Mock
	mu      sync.Mutex
	written []models.AuditEntry
}

func (m *mockSink) Name() string { return "mock" }

func (m *mockSink) Write(ctx context.Context, entry models.AuditEntry) error {
	args := m.Called(ctx, entry)
	if args.Error(0) == nil {
		m.mu.Lock()
		m.written = append(m.written, entry)
		m.mu.Unlock()
	}
	return args.Error(0)
}

func (m *mockSink) Close() error {
	return m.Called().Error(0)
}

func TestLedger_MirrorsInCommitOrder(t *testing.T) {
	sink := &mockSink{}
	sink.On("Write", mock.Anything, mock.Anything).Return(nil)
	sink.On("Close").Return(nil)

	l := New(Options{Logger: logger.NewTestLogger(t), Sinks: []Sink{sink}})
	for i := 0; i < 5; i++ {
		l.RecordCreation(context.Background(), testSuggestion(fmt.Sprintf("s-%d", i), "lead"))
	}
	l.RecordApproval(context.Background(), testApproval("s-0", "lead"))

	require.NoError(t, l.Close(context.Background()))

	require.Len(t, sink.written, 6)
	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("s-%d", i), sink.written[i].Detail.ID)
	}
	assert.Equal(t, models.EventApprovedAndExecuted, sink.written[5].Event)
	sink.AssertExpectations(t)
}

func TestLedger_MirrorFailureDoesNotAffectState(t *testing.T) {
	sink := &mockSink{}
	sink.On("Write", mock.Anything, mock.MatchedBy(func(e models.AuditEntry) bool {
		return e.Detail != nil && e.Detail.ID == "s-1"
	})).Return(fmt.Errorf("connection reset"))
	sink.On("Write", mock.Anything, mock.Anything).Return(nil)
	sink.On("Close").Return(nil)

	l := New(Options{Logger: logger.NewTestLogger(t), Sinks: []Sink{sink}})
	for i := 0; i < 3; i++ {
		l.RecordCreation(context.Background(), testSuggestion(fmt.Sprintf("s-%d", i), "lead"))
	}
	require.NoError(t, l.Close(context.Background()))

	assert.Equal(t, 3, l.Analytics().LeadsProcessed)
	assert.Equal(t, 3, l.Len())
	require.Len(t, sink.written, 2)
	assert.Equal(t, "s-0", sink.written[0].Detail.ID)
	assert.Equal(t, "s-2", sink.written[1].Detail.ID)
}

type blockingSink struct {
	release chan struct{}
	mu      sync.Mutex
	count   int
}

func (b *blockingSink) Name() string { return "blocking" }

func (b *blockingSink) Write(ctx context.Context, entry models.AuditEntry) error {
	<-b.release
	b.mu.Lock()
	b.count++
	b.mu.Unlock()
	return nil
}

func (b *blockingSink) Close() error { return nil }

func TestLedger_FullQueueDropsMirrorOnly(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	l := New(Options{Sinks: []Sink{sink}, MirrorBuffer: 1, WriteTimeout: time.Second})

	for i := 0; i < 5; i++ {
		l.RecordCreation(context.Background(), testSuggestion(fmt.Sprintf("s-%d", i), "lead"))
	}
	close(sink.release)
	require.NoError(t, l.Close(context.Background()))

	assert.Equal(t, 5, l.Len())
	assert.GreaterOrEqual(t, sink.count, 1)
	assert.LessOrEqual(t, sink.count, 2)
}

func TestLedger_CloseIsIdempotent(t *testing.T) {
	sink := &mockSink{}
	sink.On("Close").Return(nil).Once()

	l := New(Options{Sinks: []Sink{sink}})
	require.NoError(t, l.Close(context.Background()))
	require.NoError(t, l.Close(context.Background()))

	// Recording after Close still updates memory without mirroring.
	l.RecordCreation(context.Background(), testSuggestion("s-late", "lead"))
	assert.Equal(t, 1, l.Len())
	sink.AssertExpectations(t)
}

func TestLedger_CloseHonorsContext(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	defer close(sink.release)

	l := New(Options{Sinks: []Sink{sink}})
	l.RecordCreation(context.Background(), testSuggestion("s-1", "lead"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Close(ctx), context.DeadlineExceeded)
}

func TestAuditEntry_JSONShape(t *testing.T) {
	l := New(Options{Clock: newStepClock().Now})
	l.RecordCreation(context.Background(), testSuggestion("s-1", "lead1"))
	l.RecordApproval(context.Background(), testApproval("s-1", "lead1"))

	entries := l.RecentAudit(2)

	created, err := json.Marshal(entries[0])
	require.NoError(t, err)
	var createdDoc map[string]interface{}
	require.NoError(t, json.Unmarshal(created, &createdDoc))
	assert.ElementsMatch(t, []string{"event", "detail", "ts"}, keys(createdDoc))
	similar := createdDoc["detail"].(map[string]interface{})["similar"].([]interface{})
	assert.Equal(t, "D001", similar[0].(map[string]interface{})["deal_id"])
	assert.Equal(t, 0.323, similar[0].(map[string]interface{})["score"])

	approved, err := json.Marshal(entries[1])
	require.NoError(t, err)
	var approvedDoc map[string]interface{}
	require.NoError(t, json.Unmarshal(approved, &approvedDoc))
	assert.ElementsMatch(t, []string{
		"event", "suggestion_id", "crm_result", "calendar_result", "outbox_result", "edited_body", "ts",
	}, keys(approvedDoc))
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
