// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeParseError        ErrorCode = "PARSE_ERROR"
	ErrCodeProcessingError   ErrorCode = "PROCESSING_ERROR"
	ErrCodeMissingHeader     ErrorCode = "MISSING_HEADER"
	ErrCodeInvalidHeader     ErrorCode = "INVALID_HEADER"
	ErrCodeQueryNeedsContext ErrorCode = "QUERY_NEEDS_CLARIFICATION"

	ErrCodeRegistryLoadFailed       ErrorCode = "REGISTRY_LOAD_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeQueryLogFailed                ErrorCode = "QUERY_LOG_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
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

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
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

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError is returned for job variables or requests that
// cannot be parsed at all.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid query input", details, false)
}

// NewParseError wraps a malformed QueryResult document.
func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Query result could not be parsed", err.Error(), false)
}

// NewProcessingError reports a pipeline failure. The query is not retried
// because the same text fails the same way.
func NewProcessingError(details string) *StandardError {
	return newError(ErrCodeProcessingError, "Query processing failed", details, false)
}

// NewQueryNeedsClarificationError is raised when a parsed query carries
// BLOCKER errors and the process must ask the user for more detail.
func NewQueryNeedsClarificationError(message string) *StandardError {
	return newError(ErrCodeQueryNeedsContext, message, "", false)
}

func NewRegistryLoadFailedError(source string, err error) *StandardError {
	return newError(ErrCodeRegistryLoadFailed,
		fmt.Sprintf("Column registry could not be loaded from %s", source), err.Error(), true)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection failed", err.Error(), true)
}

func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed,
		fmt.Sprintf("Database query '%s' failed", query), err.Error(), true)
}

func NewSessionStoreFailedError(err error) *StandardError {
	return newError(ErrCodeSessionStoreFailed, "Session store unavailable", err.Error(), true)
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection failed", err.Error(), true)
}

func NewQueryLogFailedError(err error) *StandardError {
	return newError(ErrCodeQueryLogFailed, "Query log write failed", err.Error(), true)
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. Header
// problems share one boundary event in the query process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:                  "INVALID_INPUT",
	ErrCodeParseError:                    "PARSE_ERROR",
	ErrCodeProcessingError:               "PROCESSING_ERROR",
	ErrCodeMissingHeader:                 "QUERY_NEEDS_CLARIFICATION",
	ErrCodeInvalidHeader:                 "QUERY_NEEDS_CLARIFICATION",
	ErrCodeQueryNeedsContext:             "QUERY_NEEDS_CLARIFICATION",
	ErrCodeRegistryLoadFailed:            "REGISTRY_LOAD_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeSessionStoreFailed:            "SESSION_STORE_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeQueryLogFailed:                "QUERY_LOG_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRegistryLoadFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed:
		return 3 // Retryable technical errors

	case ErrCodeSessionStoreFailed:
		return 2

	case ErrCodeQueryLogFailed:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "HEADER") || strings.Contains(codeStr, "CLARIFICATION"):
		return "QUERY"
	case strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "PROCESSING"):
		return "PIPELINE"
	case strings.Contains(codeStr, "REGISTRY") || strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "EXECUTION"):
		return "DATABASE"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "QUERY_LOG"):
		return "SEARCH"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
