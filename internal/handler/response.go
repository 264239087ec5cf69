package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medreport/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrEmptyText):
		return http.StatusBadRequest, "EMPTY_TEXT", "report text is empty"
	case errors.Is(err, domain.ErrTextTooLong):
		return http.StatusRequestEntityTooLarge, "TEXT_TOO_LONG", "report text exceeds maximum allowed size"
	case errors.Is(err, domain.ErrInvalidEncoding):
		return http.StatusBadRequest, "INVALID_ENCODING", "report text is not valid UTF-8"
	case errors.Is(err, domain.ErrUnknownReportType):
		return http.StatusBadRequest, "UNKNOWN_REPORT_TYPE", "unknown report type; allowed: ct, spine_mri, mammography, oncology, pathology, cardiac, ultrasound, general"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", "unsupported export format; allowed: json, csv, xlsx"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Server errors are attached to the context for the request logger.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondError(c, status, code, msg)
}
