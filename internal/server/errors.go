package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/rentbook/internal/authorization"
	categorydomain "github.com/smallbiznis/rentbook/internal/category/domain"
	expensedomain "github.com/smallbiznis/rentbook/internal/expense/domain"
	invoicedomain "github.com/smallbiznis/rentbook/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/rentbook/internal/lease/domain"
	meterdomain "github.com/smallbiznis/rentbook/internal/meter/domain"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
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
	Details map[string]any    `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
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

// classifyErrorForLog returns the error type and code recorded on the request log line.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
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
		code := validationErrorCode(err)
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

	var existsErr *invoicedomain.InvoiceExistsError
	if errors.As(err, &existsErr) {
		return http.StatusConflict, errorPayload{
			Type:    "invoice_exists",
			Message: "an invoice already exists for this period",
			Details: map[string]any{
				"contract_id": existsErr.ContractID.String(),
				"year":        existsErr.Year,
				"month":       existsErr.Month,
			},
		}
	}

	var inUseErr *categorydomain.CategoryInUseError
	if errors.As(err, &inUseErr) {
		return http.StatusConflict, errorPayload{
			Type:    "referential_block",
			Message: "category is still referenced",
			Details: map[string]any{
				"type":  string(inUseErr.Type),
				"code":  inUseErr.Code,
				"count": inUseErr.Count,
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, leasedomain.ErrProfileLocked):
		return http.StatusForbidden, errorPayload{
			Type:    "profile_locked",
			Message: "profile is locked",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, invoicedomain.ErrInvoiceExists),
		errors.Is(err, categorydomain.ErrCategoryInUse),
		errors.Is(err, categorydomain.ErrDuplicateCode),
		errors.Is(err, leasedomain.ErrTenantExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
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
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isPropertyValidationError(err),
		isLeaseValidationError(err),
		isMeterValidationError(err),
		isInvoiceValidationError(err),
		isExpenseValidationError(err),
		isCategoryValidationError(err),
		isFinanceValidationError(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, propertydomain.ErrBuildingNotFound),
		errors.Is(err, propertydomain.ErrRoomNotFound),
		errors.Is(err, leasedomain.ErrRoomNotFound),
		errors.Is(err, leasedomain.ErrContractNotFound),
		errors.Is(err, leasedomain.ErrTenantNotFound),
		errors.Is(err, meterdomain.ErrRoomNotFound),
		errors.Is(err, meterdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrContractNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, expensedomain.ErrBuildingNotFound),
		errors.Is(err, expensedomain.ErrOpexNotFound),
		errors.Is(err, expensedomain.ErrSetupCostNotFound),
		errors.Is(err, expensedomain.ErrAssetNotFound),
		errors.Is(err, categorydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
