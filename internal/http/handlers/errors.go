package handlers

import (
	"net/http"

	"querykit/internal/domain"
	"querykit/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ValidationDetails names the rejected query parameter.
type ValidationDetails struct {
	Parameter string `json:"parameter"`
	Reason    string `json:"reason"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	if verr, ok := domain.AsValidation(err); ok {
		respondError(c, http.StatusBadRequest, "validation_error", verr.Error(), ValidationDetails{
			Parameter: verr.Field,
			Reason:    verr.Msg,
		})
		return
	}
	switch {
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}
