// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenExpired   = errors.New("token expired")

	// ErrSelfAction guards the administrative routes: an admin may not
	// change their own role or delete their own account.
	ErrSelfAction = errors.New("operation not permitted on own account")
)

type AppError struct {
	Err     error
	Message string
	Status  int
	Code    string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Status:  status,
		Code:    code,
	}
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func ValidationError(message string) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		"VALIDATION_ERROR",
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		field+" already exists",
		http.StatusConflict,
		"DUPLICATE",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"token has expired",
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"token is invalid",
		http.StatusUnauthorized,
		"TOKEN_INVALID",
	)
}
