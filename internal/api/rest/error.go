package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lumenshare/cardledger/internal/domain"
	"github.com/lumenshare/cardledger/internal/logger"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeBadRequest       ErrorCode = "bad_request"
	errCodeNotFound         ErrorCode = "not_found"
	errCodeValidationFailed ErrorCode = "validation_failed"
	errCodePolicyViolation  ErrorCode = "policy_violation"
	errCodeEditionClosed    ErrorCode = "edition_closed"
	errCodeNotForSale       ErrorCode = "not_for_sale"
	errCodePaymentFailed    ErrorCode = "payment_failed"

	// Server errors (5xx)
	errCodeInternalError   ErrorCode = "internal_error"
	errCodeStorageConflict ErrorCode = "storage_conflict"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information
type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Field   string    `json:"field,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, details...)
}

// respondNotFound sends a 404 Not Found response
func respondNotFound(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusNotFound, errCodeNotFound, message, details...)
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.Error(err, fields...)
	respondWithError(c, http.StatusInternalServerError, errCodeInternalError, message)
}

// respondDomainError maps a domain error onto its HTTP status. Anything
// outside the taxonomy falls through to a logged 500.
func respondDomainError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Error: errorDetail{
				Code:    errCodeValidationFailed,
				Message: "Validation failed",
				Details: validationErr.Message,
				Field:   validationErr.Field,
			},
		})
		return
	}

	var paymentErr *domain.PaymentError
	if errors.As(err, &paymentErr) {
		respondWithError(c, http.StatusPaymentRequired, errCodePaymentFailed, "Payment failed", paymentErr.Reason)
		return
	}

	switch {
	case errors.Is(err, domain.ErrCardNotFound),
		errors.Is(err, domain.ErrOwnershipNotFound):
		respondWithError(c, http.StatusNotFound, errCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrPolicyViolation):
		respondWithError(c, http.StatusConflict, errCodePolicyViolation, err.Error())
	case errors.Is(err, domain.ErrEditionExhausted),
		errors.Is(err, domain.ErrEditionExpired):
		respondWithError(c, http.StatusConflict, errCodeEditionClosed, err.Error())
	case errors.Is(err, domain.ErrNotForSale):
		respondWithError(c, http.StatusConflict, errCodeNotForSale, err.Error())
	case errors.Is(err, domain.ErrStorageConflict):
		respondWithError(c, http.StatusServiceUnavailable, errCodeStorageConflict,
			"Storage conflict, retry the request")
	default:
		respondInternalError(c, err, "Internal server error")
	}
}
