// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Meta    any  `json:"meta,omitempty"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PageMeta struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(payload)
}

func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successEnvelope{Success: true, Data: data})
}

func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, successEnvelope{Success: true, Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Paginated(w http.ResponseWriter, data any, page, pageSize, total int) {
	writeJSON(w, http.StatusOK, successEnvelope{
		Success: true,
		Data:    data,
		Meta:    PageMeta{Page: page, PageSize: pageSize, Total: total},
	})
}

func JSONError(w http.ResponseWriter, err error) {
	if appErr, ok := AsAppError(err); ok {
		writeJSON(w, appErr.Status, errorEnvelope{
			Success: false,
			Error: errorBody{
				Code:    appErr.Code,
				Message: appErr.Message,
			},
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorEnvelope{
		Success: false,
		Error: errorBody{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		},
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, ValidationError(message))
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func Forbidden(w http.ResponseWriter, message string) {
	JSONError(w, ForbiddenError(message))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

// InternalServerError logs the real cause and returns a generic body so
// dependency failures never leak detail to callers.
func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)
	JSONError(w, err)
}

func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, formatFieldError(fe))
	}

	return strings.Join(messages, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
