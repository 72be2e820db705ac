package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeInvalidLead, http.StatusBadRequest},
		{ErrCodeMalformedApproval, http.StatusBadRequest},
		{ErrCodeMissingLeadID, http.StatusBadRequest},
		{ErrCodeInputParsingFailed, http.StatusBadRequest},
		{ErrCodeValidationFailed, http.StatusBadRequest},
		{ErrCodeCorpusLoadFailed, http.StatusServiceUnavailable},
		{ErrCodeAuditMirrorFailed, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestAsStandardError(t *testing.T) {
	t.Run("standard error passes through wrapping", func(t *testing.T) {
		orig := NewMissingLeadIDError("s-1")
		wrapped := fmt.Errorf("approve: %w", orig)

		got := AsStandardError(wrapped)
		assert.Same(t, orig, got)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := AsStandardError(fmt.Errorf("boom"))
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.Equal(t, "boom", got.Details)
		assert.False(t, got.Retryable)
	})
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("client error is never retried", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewMissingLeadIDError("s-1"))

		assert.Equal(t, "MALFORMED_APPROVAL", bpmn.Code)
		assert.Equal(t, 0, bpmn.Retries)
		assert.False(t, bpmn.Retryable)
		assert.Equal(t, "MISSING_LEAD_ID", bpmn.ErrorVariables["originalErrorCode"])
	})

	t.Run("corpus load failure is retried", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewCorpusLoadFailedError("postgres", fmt.Errorf("conn refused")))

		assert.Equal(t, "CORPUS_UNAVAILABLE", bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)
		assert.True(t, bpmn.Retryable)
	})

	t.Run("retryable flag without a retry budget is not retried", func(t *testing.T) {
		stdErr := NewInvalidLeadError("company: expected string")
		stdErr.Retryable = true

		bpmn := ConvertToBPMNError(stdErr)
		assert.Equal(t, 0, bpmn.Retries)
		assert.False(t, bpmn.Retryable)
	})

	t.Run("corpus load failure marked permanent is not retried", func(t *testing.T) {
		stdErr := NewCorpusLoadFailedError("file", fmt.Errorf("no such file"))
		stdErr.Retryable = false

		bpmn := ConvertToBPMNError(stdErr)
		assert.Equal(t, 0, bpmn.Retries)
		assert.False(t, bpmn.Retryable)
	})

	t.Run("unmapped code falls back to itself", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewInternalError(fmt.Errorf("x")))
		assert.Equal(t, "INTERNAL_ERROR", bpmn.Code)
	})

	t.Run("error variables merge", func(t *testing.T) {
		vars := ConvertToBPMNError(NewInvalidLeadError("company: expected string")).ToErrorVariables()

		require.Contains(t, vars, "errorCode")
		assert.Equal(t, "INVALID_LEAD", vars["errorCode"])
		assert.Equal(t, "company: expected string", vars["errorDetails"])
		assert.Contains(t, vars, "timestamp")
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CORPUS", GetErrorCategory(ErrCodeCorpusInvalid))
	assert.Equal(t, "AUDIT", GetErrorCategory(ErrCodeAuditMirrorFailed))
	assert.Equal(t, "INPUT", GetErrorCategory(ErrCodeInvalidLead))
	assert.Equal(t, "INPUT", GetErrorCategory(ErrCodeMalformedApproval))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestStandardError_Error(t *testing.T) {
	err := NewValidationFailedError([]string{"suggestion: required field missing", "edited_body: expected string, got float64"})

	assert.Contains(t, err.Error(), "VALIDATION_FAILED")
	assert.Contains(t, err.Details, "; ")
	assert.True(t, IsClientError(err.Code))
	assert.False(t, IsRetryableErrorCode(err.Code))

	err.WithMetadata("operation", "approve")
	assert.Equal(t, "approve", err.Metadata["operation"])
}
