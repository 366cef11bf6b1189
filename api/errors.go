package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

var conflicts = []struct {
	err  error
	code string
}{
	{domain.ErrSoldOut, "sold_out"},
	{domain.ErrAlreadyPaid, "already_paid"},
	{domain.ErrInvalidTransition, "invalid_transition"},
	{domain.ErrSeatTaken, "seat_taken"},
	{domain.ErrPaymentInProgress, "payment_in_progress"},
	{domain.ErrEmailTaken, "email_taken"},
}

// statusFor maps domain errors to HTTP. Anything unknown is a 500 whose
// message is not shown to the client.
func statusFor(err error) (int, errorResponse) {
	var v *domain.ValidationError
	if errors.As(err, &v) {
		return http.StatusBadRequest, errorResponse{Error: v.Error(), Code: "validation_failed", Field: v.Field}
	}
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized, errorResponse{Error: err.Error(), Code: "auth_required"}
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusUnauthorized, errorResponse{Error: err.Error(), Code: "invalid_credentials"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: err.Error(), Code: "forbidden"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"}
	case errors.Is(err, domain.ErrPaymentDeclined):
		return http.StatusPaymentRequired, errorResponse{Error: err.Error(), Code: "payment_declined"}
	}
	for _, c := range conflicts {
		if errors.Is(err, c.err) {
			return http.StatusConflict, errorResponse{Error: err.Error(), Code: c.code}
		}
	}
	if domain.IsStoreError(err) {
		return http.StatusServiceUnavailable, errorResponse{Error: "storage is temporarily unavailable, retry later", Code: "unavailable"}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"}
}

func writeError(c *gin.Context, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", "1")
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, field, reason string) {
	writeError(c, domain.NewValidationError(field, reason))
}
