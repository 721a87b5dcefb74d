package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/viralzap/viralzap/internal/catalog/domain"
	credentialdomain "github.com/viralzap/viralzap/internal/credential/domain"
	exchangeratedomain "github.com/viralzap/viralzap/internal/exchangerate/domain"
	orderdomain "github.com/viralzap/viralzap/internal/order/domain"
	providerdomain "github.com/viralzap/viralzap/internal/provider/domain"
	walletdomain "github.com/viralzap/viralzap/internal/wallet/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrConflict       = errors.New("conflict")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, walletdomain.ErrInsufficientFunds):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "insufficient_funds",
			Message: "insufficient funds",
		}
	case errors.Is(err, providerdomain.ErrProviderNotConfigured):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "provider_not_configured",
			Message: "provider not configured",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, orderdomain.ErrInvalidID),
		errors.Is(err, orderdomain.ErrInvalidLink),
		errors.Is(err, orderdomain.ErrQuantityOutOfRange),
		errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidMarkup),
		errors.Is(err, catalogdomain.ErrInvalidStatus),
		errors.Is(err, credentialdomain.ErrUnknownProvider),
		errors.Is(err, credentialdomain.ErrInvalidKey),
		errors.Is(err, credentialdomain.ErrInvalidEndpoint),
		errors.Is(err, exchangeratedomain.ErrInvalidRate),
		errors.Is(err, providerdomain.ErrUnknownProvider),
		errors.Is(err, walletdomain.ErrInvalidAmount):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, credentialdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// Conflicts are lifecycle violations: acting on an order in a state that no
// longer permits the action.
func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, orderdomain.ErrServiceInactive),
		errors.Is(err, orderdomain.ErrNoProviderOrder),
		errors.Is(err, orderdomain.ErrRefillUnsupported),
		errors.Is(err, orderdomain.ErrRefillNotReady),
		errors.Is(err, orderdomain.ErrCancelUnsupported),
		errors.Is(err, orderdomain.ErrAlreadyTerminal):
		return true
	default:
		return false
	}
}
