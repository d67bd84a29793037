package errors

import "net/http"

// AppError is an API failure. Status is the HTTP code; Reason is a stable
// snake_case token the mini-app switches on, Message is shown to the user.
type AppError struct {
	Status  int
	Reason  string
	Message string
}

func (e *AppError) Error() string {
	return e.Reason + ": " + e.Message
}

// Payload is the JSON body every failed request returns.
func (e *AppError) Payload() map[string]string {
	return map[string]string{"error": e.Message, "reason": e.Reason}
}

func New(status int, reason, message string) *AppError {
	return &AppError{Status: status, Reason: reason, Message: message}
}

var (
	ErrInternalServer = New(http.StatusInternalServerError, "internal", "Internal server error")
	ErrLLMUnavailable = New(http.StatusBadGateway, "analysis_unavailable", "Meal analysis is unavailable, try again later")
	ErrRateLimit      = New(http.StatusTooManyRequests, "rate_limited", "Too many requests, slow down")
	ErrNotImplemented = New(http.StatusNotImplemented, "not_implemented", "Not implemented")
)

func BadRequest(msg string) *AppError {
	return New(http.StatusBadRequest, "invalid_request", msg)
}

// NotFound uses the resource name as the reason, e.g. "meal_not_found".
func NotFound(resource, msg string) *AppError {
	return New(http.StatusNotFound, resource+"_not_found", msg)
}

func Conflict(reason, msg string) *AppError {
	return New(http.StatusConflict, reason, msg)
}
