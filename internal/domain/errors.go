package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code and message so wrapped copies of a
// sentinel still satisfy errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidAnswerStatus    = NewDomainError(ErrCodeValidation, "invalid answer status")
	ErrInvalidProjectStatus   = NewDomainError(ErrCodeValidation, "invalid project status")
	ErrInvalidRetrievedChunk  = NewDomainError(ErrCodeValidation, "invalid retrieved chunk")
	ErrManualAnswerRequired   = NewDomainError(ErrCodeValidation, "manual answer is required for MANUAL status")
	ErrUnknownSampleQuestion  = NewDomainError(ErrCodeValidation, "unknown sample question id")
	ErrInvalidChunkEmbedState = NewDomainError(ErrCodeValidation, "invalid chunk embedding status")
	ErrInvalidPageCursor      = NewDomainError(ErrCodeValidation, "invalid page cursor")
	ErrNoQuestions            = NewDomainError(ErrCodeValidation, "project needs at least one question")
)

// Not found errors
var (
	ErrProjectNotFound  = NewDomainError(ErrCodeNotFound, "project not found")
	ErrQuestionNotFound = NewDomainError(ErrCodeNotFound, "question not found")
	ErrAnswerNotFound   = NewDomainError(ErrCodeNotFound, "answer not found")
	ErrChunkNotFound    = NewDomainError(ErrCodeNotFound, "document chunk not found")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// Authorization errors
var (
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)
