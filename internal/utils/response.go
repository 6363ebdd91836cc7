package utils

import (
	"errors"
	"net/http"

	"payhost-backend/internal/payment"
)

// Response represents a standardized response structure.
// It includes a status code, a message, and data.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"` // Ensure data is always present, even if nil (will be null in JSON)
}

// NewSuccessResponse creates a new success Response instance.
// Defaults status to 200 (OK).
func NewSuccessResponse(message string, data interface{}) Response {
	return Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse creates a new error Response instance.
// Data is explicitly set to nil.
func NewErrorResponse(status int, message string) Response {
	return Response{
		Status:  status,
		Message: message,
		Data:    nil,
	}
}

// ErrorStatus maps service errors to an HTTP status.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, payment.ErrPluginNotFound):
		return http.StatusNotFound
	case errors.Is(err, payment.ErrUnknownPlatform),
		errors.Is(err, payment.ErrMissingConfig),
		errors.Is(err, payment.ErrNotConfigurable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewServiceErrorResponse builds an error response with the status from ErrorStatus.
func NewServiceErrorResponse(err error) (int, Response) {
	status := ErrorStatus(err)
	return status, NewErrorResponse(status, err.Error())
}
