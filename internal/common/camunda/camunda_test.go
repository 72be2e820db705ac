package camunda

import (
	"errors"
	"testing"
	"time"

	"lead-triage/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	taskType    string
	enabled     bool
	registerErr error
	registered  bool
	closed      *[]string
}

func (f *fakeWorker) Register() error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = true
	return nil
}

func (f *fakeWorker) Close() {
	*f.closed = append(*f.closed, f.taskType)
}

func (f *fakeWorker) GetTaskType() string { return f.taskType }
func (f *fakeWorker) IsEnabled() bool     { return f.enabled }

func TestGroup_StartSkipsDisabled(t *testing.T) {
	var closed []string
	create := &fakeWorker{taskType: "lead.suggestion.create", enabled: true, closed: &closed}
	approve := &fakeWorker{taskType: "lead.suggestion.approve", enabled: false, closed: &closed}

	group := NewGroup(logger.NewTestLogger(t), create, approve)
	require.NoError(t, group.Start())

	assert.True(t, create.registered)
	assert.False(t, approve.registered)
	assert.Equal(t, []string{"lead.suggestion.create"}, group.TaskTypes())

	group.Close()
	assert.Equal(t, []string{"lead.suggestion.create"}, closed)
	assert.Empty(t, group.TaskTypes())
}

func TestGroup_StartRollsBackOnFailure(t *testing.T) {
	var closed []string
	create := &fakeWorker{taskType: "lead.suggestion.create", enabled: true, closed: &closed}
	approve := &fakeWorker{
		taskType:    "lead.suggestion.approve",
		enabled:     true,
		registerErr: errors.New("gateway unavailable"),
		closed:      &closed,
	}

	group := NewGroup(nil, create, approve)
	err := group.Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead.suggestion.approve")
	assert.Equal(t, []string{"lead.suggestion.create"}, closed)
}

func TestGroup_CloseReverseOrder(t *testing.T) {
	var closed []string
	a := &fakeWorker{taskType: "lead.suggestion.create", enabled: true, closed: &closed}
	b := &fakeWorker{taskType: "lead.suggestion.approve", enabled: true, closed: &closed}

	group := NewGroup(nil, a, b)
	require.NoError(t, group.Start())
	group.Close()

	assert.Equal(t, []string{"lead.suggestion.approve", "lead.suggestion.create"}, closed)
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err       string
		retryable bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"write: broken pipe", true},
		{"rpc error: code = NotFound desc = job not found", false},
		{"permission denied", false},
	}

	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableZeebeError(errors.New(tt.err)))
		})
	}
}

func TestBackoff(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, backoff(cfg, 0))
	assert.Equal(t, 2*time.Second, backoff(cfg, 1))
	assert.Equal(t, 4*time.Second, backoff(cfg, 2))
	assert.Equal(t, 5*time.Second, backoff(cfg, 3))
}

func TestNewClientWithConfig_RequiresAddress(t *testing.T) {
	_, err := NewClientWithConfig(&ClientConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway address is required")
}
