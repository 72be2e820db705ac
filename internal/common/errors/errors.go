package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeInvalidLead        ErrorCode = "INVALID_LEAD"
	ErrCodeMalformedApproval  ErrorCode = "MALFORMED_APPROVAL"
	ErrCodeMissingLeadID      ErrorCode = "MISSING_LEAD_ID"
	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"

	ErrCodeCorpusLoadFailed ErrorCode = "CORPUS_LOAD_FAILED"
	ErrCodeCorpusInvalid    ErrorCode = "CORPUS_INVALID"

	ErrCodeAuditMirrorFailed ErrorCode = "AUDIT_MIRROR_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func NewInvalidLeadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidLead,
		Message:   "Lead payload is malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewMalformedApprovalError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedApproval,
		Message:   "Approval payload is malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewMissingLeadIDError(suggestionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingLeadID,
		Message:   "Suggestion context has no lead_id",
		Details:   fmt.Sprintf("suggestionId: %s", suggestionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInputParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse input document",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewValidationFailedError(messages []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   strings.Join(messages, "; "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCorpusLoadFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCorpusLoadFailed,
		Message:   "Failed to load deal corpus",
		Details:   fmt.Sprintf("source: %s, error: %s", source, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewCorpusInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCorpusInvalid,
		Message:   "Deal corpus failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuditMirrorFailedError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditMirrorFailed,
		Message:   fmt.Sprintf("Audit mirror '%s' write failed", sink),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// AsStandardError unwraps err into a *StandardError, wrapping unknown errors
// as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// IsClientError reports whether code describes a caller mistake.
func IsClientError(code ErrorCode) bool {
	switch code {
	case ErrCodeInvalidLead,
		ErrCodeMalformedApproval,
		ErrCodeMissingLeadID,
		ErrCodeInputParsingFailed,
		ErrCodeValidationFailed:
		return true
	default:
		return false
	}
}

func HTTPStatus(code ErrorCode) int {
	if IsClientError(code) {
		return http.StatusBadRequest
	}
	if code == ErrCodeCorpusLoadFailed {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidLead:        "INVALID_LEAD",
	ErrCodeMalformedApproval:  "MALFORMED_APPROVAL",
	ErrCodeMissingLeadID:      "MALFORMED_APPROVAL",
	ErrCodeInputParsingFailed: "INPUT_PARSING_FAILED",
	ErrCodeValidationFailed:   "VALIDATION_FAILED",
	ErrCodeCorpusLoadFailed:   "CORPUS_UNAVAILABLE",
	ErrCodeCorpusInvalid:      "CORPUS_UNAVAILABLE",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCorpusLoadFailed, ErrCodeAuditMirrorFailed:
		return 3
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	// Only codes with a retry budget are retried, whatever the error claims.
	retryable := stdErr.Retryable && IsRetryableErrorCode(stdErr.Code)
	retries := 0
	if retryable {
		retries = GetRetryCount(stdErr.Code)
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CORPUS"):
		return "CORPUS"
	case strings.Contains(codeStr, "AUDIT"):
		return "AUDIT"
	case strings.Contains(codeStr, "LEAD") || strings.Contains(codeStr, "APPROVAL"):
		return "INPUT"
	case strings.Contains(codeStr, "PARSING") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
