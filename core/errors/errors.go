package errors

import "fmt"

// ErrorCode identifies an application-level error category
type ErrorCode string

const (
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrTokenExpired   ErrorCode = "TOKEN_EXPIRED"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrNoTimetable    ErrorCode = "NO_TIMETABLE_FOUND"
	ErrNetwork        ErrorCode = "NETWORK_ERROR"
	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"
)

// AppError carries an error code, a user-facing message and the underlying cause
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// CodeOf returns the error code of err, or ErrInternalServer for plain errors
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if ae, ok := err.(*AppError); ok && ae != nil {
		return ae.Code
	}
	return ErrInternalServer
}
