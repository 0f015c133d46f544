package server

import (
	"errors"
	"net/http"

	adjustmentdomain "github.com/HollandRoad/mls/internal/adjustment/domain"
	billingdomain "github.com/HollandRoad/mls/internal/billing/domain"
	communicationdomain "github.com/HollandRoad/mls/internal/communication/domain"
	expensedomain "github.com/HollandRoad/mls/internal/expense/domain"
	ledgerdomain "github.com/HollandRoad/mls/internal/ledger/domain"
	overviewdomain "github.com/HollandRoad/mls/internal/overview/domain"
	tenancydomain "github.com/HollandRoad/mls/internal/tenancy/domain"
	tenantdomain "github.com/HollandRoad/mls/internal/tenant/domain"
	unitdomain "github.com/HollandRoad/mls/internal/unit/domain"
	"github.com/gin-gonic/gin"
)

// apiError carries an HTTP status alongside a machine-readable code.
type apiError struct {
	status  int
	code    string
	message string
	field   string
}

func (e *apiError) Error() string { return e.code }

var (
	ErrNotFound           = &apiError{status: http.StatusNotFound, code: "not_found", message: "resource not found"}
	ErrServiceUnavailable = &apiError{status: http.StatusServiceUnavailable, code: "service_unavailable", message: "service unavailable"}
)

func invalidRequestError() *apiError {
	return &apiError{
		status:  http.StatusBadRequest,
		code:    "invalid_request",
		message: "request body could not be parsed",
	}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{
		status:  http.StatusBadRequest,
		code:    code,
		message: message,
		field:   field,
	}
}

// AbortWithError translates domain errors into HTTP responses. Unknown
// errors collapse into a 500 without leaking internals.
func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var api *apiError
	if errors.As(err, &api) {
		respond(c, api)
		return
	}

	respond(c, &apiError{
		status:  statusFor(err),
		code:    err.Error(),
		message: err.Error(),
	})
}

func respond(c *gin.Context, api *apiError) {
	body := gin.H{
		"error": gin.H{
			"code":    api.code,
			"message": api.message,
		},
	}
	if api.field != "" {
		body["error"].(gin.H)["field"] = api.field
	}
	c.AbortWithStatusJSON(api.status, body)
}

func statusFor(err error) int {
	switch {
	case isNotFound(err):
		return http.StatusNotFound
	case isConflict(err):
		return http.StatusConflict
	case isValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isNotFound(err error) bool {
	switch err {
	case unitdomain.ErrNotFound,
		tenantdomain.ErrNotFound,
		tenancydomain.ErrUnitNotFound,
		tenancydomain.ErrTenantNotFound,
		billingdomain.ErrNotFound,
		adjustmentdomain.ErrNotFound,
		expensedomain.ErrNotFound:
		return true
	default:
		return false
	}
}

func isConflict(err error) bool {
	switch err {
	case tenancydomain.ErrUnitOccupied,
		tenancydomain.ErrTenantAlreadyActive,
		tenancydomain.ErrPeriodOverlap,
		billingdomain.ErrDuplicateMonth,
		adjustmentdomain.ErrDuplicateYear:
		return true
	default:
		return false
	}
}

func isValidation(err error) bool {
	switch err {
	case unitdomain.ErrInvalidAmount,
		unitdomain.ErrInvalidName,
		tenantdomain.ErrInvalidName,
		tenantdomain.ErrInvalidEmail,
		tenantdomain.ErrInvalidAmount,
		tenancydomain.ErrNoActiveTenancy,
		tenancydomain.ErrDateBeforeStart,
		tenancydomain.ErrInvalidDate,
		billingdomain.ErrInvalidAmount,
		billingdomain.ErrInvalidMonth,
		adjustmentdomain.ErrInvalidAmount,
		adjustmentdomain.ErrInvalidYear,
		communicationdomain.ErrInvalidTenant,
		communicationdomain.ErrInvalidType,
		expensedomain.ErrInvalidAmount,
		expensedomain.ErrInvalidYear,
		ledgerdomain.ErrInvalidUnit,
		ledgerdomain.ErrInvalidRange,
		overviewdomain.ErrInvalidMonth:
		return true
	default:
		return false
	}
}
