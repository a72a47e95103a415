// Package errors provides the error taxonomy shared by the application wizard,
// the persistence layer and the review workflow workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Wizard errors
const (
	ErrCodeValidationFailed      ErrorCode = "VALIDATION_FAILED"
	ErrCodePreconditionViolation ErrorCode = "PRECONDITION_VIOLATION"
	ErrCodeIdentityMissing       ErrorCode = "IDENTITY_MISSING"
	ErrCodeAttachmentRejected    ErrorCode = "ATTACHMENT_REJECTED"
	ErrCodeInvalidPayload        ErrorCode = "INVALID_PAYLOAD"

	ErrCodeDraftSaveFailed ErrorCode = "DRAFT_SAVE_FAILED"
	ErrCodeDraftLoadFailed ErrorCode = "DRAFT_LOAD_FAILED"
	ErrCodeDraftNotFound   ErrorCode = "DRAFT_NOT_FOUND"

	ErrCodeSubmissionFailed        ErrorCode = "SUBMISSION_FAILED"
	ErrCodeSubmissionNotFound      ErrorCode = "SUBMISSION_NOT_FOUND"
	ErrCodeDuplicateApplication    ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeInvalidStatusTransition ErrorCode = "INVALID_STATUS_TRANSITION"
)

// Infrastructure errors
const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexingFailed    ErrorCode = "INDEXING_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeProcessStartFailed     ErrorCode = "PROCESS_START_FAILED"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// FieldError describes one failed rule on one form field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Fields    []FieldError           `json:"fields,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
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

// NewValidationFailedError reports failed step rules. Never retryable; the
// user fixes the fields and tries again.
func NewValidationFailedError(step string, fields []FieldError) *StandardError {
	e := newError(ErrCodeValidationFailed, "Please correct the highlighted fields", fmt.Sprintf("step: %s", step), false, nil)
	e.Fields = fields
	e.Metadata = map[string]interface{}{"step": step}
	return e
}

// NewPreconditionError describes an operation that was rejected as a no-op.
func NewPreconditionError(operation, reason string) *StandardError {
	e := newError(ErrCodePreconditionViolation, reason, fmt.Sprintf("operation: %s", operation), false, nil)
	e.Metadata = map[string]interface{}{"operation": operation}
	return e
}

func NewIdentityMissingError(operation string) *StandardError {
	return newError(ErrCodeIdentityMissing, "You must be signed in to continue", fmt.Sprintf("operation: %s", operation), false, nil)
}

func NewAttachmentRejectedError(slot, reason string) *StandardError {
	e := newError(ErrCodeAttachmentRejected, reason, fmt.Sprintf("slot: %s", slot), false, nil)
	e.Fields = []FieldError{{Field: slot, Code: "INVALID_ATTACHMENT", Message: reason}}
	return e
}

func NewInvalidPayloadError(fields []FieldError) *StandardError {
	e := newError(ErrCodeInvalidPayload, "Application data is malformed", "", false, nil)
	e.Fields = fields
	return e
}

// NewDraftSaveFailedError creates a retryable persistence error.
func NewDraftSaveFailedError(err error) *StandardError {
	return newError(ErrCodeDraftSaveFailed, "Your draft could not be saved", errDetails(err), true, err)
}

// NewDraftLoadFailedError creates a retryable persistence error.
func NewDraftLoadFailedError(err error) *StandardError {
	return newError(ErrCodeDraftLoadFailed, "Your draft could not be loaded", errDetails(err), true, err)
}

func NewDraftNotFoundError(draftID string) *StandardError {
	return newError(ErrCodeDraftNotFound, "Draft not found", fmt.Sprintf("draftId: %s", draftID), false, nil)
}

// NewSubmissionFailedError creates a retryable persistence error. The draft is
// kept when this is returned.
func NewSubmissionFailedError(err error) *StandardError {
	return newError(ErrCodeSubmissionFailed, "Your application could not be submitted", errDetails(err), true, err)
}

func NewSubmissionNotFoundError(id string) *StandardError {
	return newError(ErrCodeSubmissionNotFound, "Application not found", fmt.Sprintf("id: %s", id), false, nil)
}

// NewDuplicateApplicationError creates a non-retryable duplicate application error.
func NewDuplicateApplicationError(applicationID string) *StandardError {
	return newError(ErrCodeDuplicateApplication, "Application already exists", fmt.Sprintf("applicationId: %s", applicationID), false, nil)
}

func NewInvalidStatusTransitionError(from, to string) *StandardError {
	e := newError(ErrCodeInvalidStatusTransition, "Application status cannot change this way", fmt.Sprintf("from: %s, to: %s", from, to), false, nil)
	e.Metadata = map[string]interface{}{"from": from, "to": to}
	return e
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", errDetails(err), true, err)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, errDetails(err)), true, err)
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", errDetails(err), true, err)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("index: %s, error: %s", index, errDetails(err)), true, err)
}

func NewIndexingFailedError(index string, err error) *StandardError {
	return newError(ErrCodeIndexingFailed, "Elasticsearch indexing error",
		fmt.Sprintf("index: %s, error: %s", index, errDetails(err)), true, err)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, errDetails(err)), true, err)
}

func NewProcessStartFailedError(processID string, err error) *StandardError {
	return newError(ErrCodeProcessStartFailed, "Review process could not be started",
		fmt.Sprintf("processId: %s, error: %s", processID, errDetails(err)), true, err)
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), errDetails(err), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), errDetails(err), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", errDetails(err), false, err)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the error codes caught by boundary
// events in the admission-review process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:         "APPLICATION_INVALID",
	ErrCodeSubmissionNotFound:       "SUBMISSION_NOT_FOUND",
	ErrCodeInvalidStatusTransition:  "INVALID_STATUS_TRANSITION",
	ErrCodeDuplicateApplication:     "DUPLICATE_APPLICATION",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeDatabaseInsertFailed:     "DATABASE_INSERT_FAILED",
	ErrCodeSearchQueryFailed:        "SEARCH_QUERY_FAILED",
	ErrCodeIndexingFailed:           "INDEXING_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeIndexingFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeProcessStartFailed:
		return 3

	case ErrCodeTimeout, ErrCodeExternalService:
		return 2

	case ErrCodeDraftSaveFailed, ErrCodeDraftLoadFailed, ErrCodeSubmissionFailed:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if len(stdErr.Fields) > 0 {
		vars["fieldErrors"] = stdErr.Fields
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard extracts a StandardError from err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

// IsRetryable reports whether the caller may retry the failed operation.
func IsRetryable(err error) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Retryable
}

// UserMessage converts any error into a sentence fit for display next to the
// form. Field-level detail stays in StandardError.Fields.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	stdErr, ok := AsStandard(err)
	if !ok {
		return "Something went wrong. Please try again."
	}
	if stdErr.Retryable {
		return stdErr.Message + ". Please try again."
	}
	return stdErr.Message
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DRAFT") || strings.Contains(codeStr, "SUBMISSION"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "IDENTITY"):
		return "AUTH"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") ||
		strings.Contains(codeStr, "PRECONDITION") || strings.Contains(codeStr, "ATTACHMENT"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
