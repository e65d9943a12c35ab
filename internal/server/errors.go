package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cashflowdomain "github.com/smallbiznis/facturo/internal/cashflow/domain"
	dashboarddomain "github.com/smallbiznis/facturo/internal/dashboard/domain"
	forecastdomain "github.com/smallbiznis/facturo/internal/forecast/domain"
	invoicedomain "github.com/smallbiznis/facturo/internal/invoice/domain"
	"github.com/smallbiznis/facturo/internal/ocr"
	supplierdomain "github.com/smallbiznis/facturo/internal/supplier/domain"
	rankdomain "github.com/smallbiznis/facturo/internal/supplierrank/domain"
	trenddomain "github.com/smallbiznis/facturo/internal/trend/domain"
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
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

// ErrorHandlingMiddleware turns errors recorded on the context into one
// JSON error response. Handlers record errors via AbortWithError and never
// write error bodies themselves.
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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func mapError(err error) (int, errorPayload) {
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
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	if isNotFoundError(err) {
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	}

	// Store failures, OCR fetch failures and timeouts all surface
	// generically; the request logger keeps the detail.
	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
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
		errors.Is(err, invoicedomain.ErrCompanyRequired),
		errors.Is(err, invoicedomain.ErrSupplierRequired),
		errors.Is(err, invoicedomain.ErrInvalidAmount),
		errors.Is(err, invoicedomain.ErrInvalidStatus),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrEmptyUpdate),
		errors.Is(err, supplierdomain.ErrCompanyRequired),
		errors.Is(err, supplierdomain.ErrInvalidID),
		errors.Is(err, dashboarddomain.ErrCompanyRequired),
		errors.Is(err, dashboarddomain.ErrInvalidPeriod),
		errors.Is(err, trenddomain.ErrCompanyRequired),
		errors.Is(err, trenddomain.ErrInvalidMonths),
		errors.Is(err, forecastdomain.ErrCompanyRequired),
		errors.Is(err, rankdomain.ErrCompanyRequired),
		errors.Is(err, rankdomain.ErrInvalidMonths),
		errors.Is(err, cashflowdomain.ErrCompanyRequired),
		errors.Is(err, cashflowdomain.ErrInvalidMonths),
		errors.Is(err, ocr.ErrCompanyRequired),
		errors.Is(err, ocr.ErrNoImage):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, supplierdomain.ErrSupplierNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasSuffix(code, "_required") {
		return strings.TrimSuffix(code, "_required")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch {
	case code == "invalid_request":
		return "invalid request"
	case strings.HasSuffix(code, "_required"):
		return "required value is missing"
	default:
		return "invalid value"
	}
}
