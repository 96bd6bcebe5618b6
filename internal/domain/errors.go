package domain

import "errors"

type ErrorCode string

const (
	ErrorCodeValidation  ErrorCode = "VALIDATION"
	ErrorCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrorCodeConflict    ErrorCode = "CONFLICT"
	ErrorCodeTransient   ErrorCode = "TRANSIENT"
	ErrorCodeConsistency ErrorCode = "CONSISTENCY"
)

// DomainError is the single error type crossing layer boundaries. HTTPStatus
// is only consulted at the HTTP edge.
type DomainError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

func hasCode(err error, code ErrorCode) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// IsNotFound reports whether err marks a vanished PR or message. Reconcilers
// treat it as a cleanup signal, never as a retry signal.
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsTransient reports whether err is safe to retry on the next trigger.
func IsTransient(err error) bool { return hasCode(err, ErrorCodeTransient) }

func IsConflict(err error) bool { return hasCode(err, ErrorCodeConflict) }

func NotFoundError(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeNotFound, Message: msg, HTTPStatus: 404}
}

func ValidationError(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeValidation, Message: msg, HTTPStatus: 400}
}

func ConflictError(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeConflict, Message: msg, HTTPStatus: 409}
}

func TransientError(msg string, err error) *DomainError {
	return &DomainError{Code: ErrorCodeTransient, Message: msg, HTTPStatus: 502, Err: err}
}

func ConsistencyError(msg string, err error) *DomainError {
	return &DomainError{Code: ErrorCodeConsistency, Message: msg, HTTPStatus: 500, Err: err}
}
