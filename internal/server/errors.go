package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apikeydomain "github.com/policywaylabs/policyway/internal/apikey/domain"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	distributiondomain "github.com/policywaylabs/policyway/internal/distribution/domain"
	invoicedomain "github.com/policywaylabs/policyway/internal/invoice/domain"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	receiptdomain "github.com/policywaylabs/policyway/internal/receipt/domain"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrRateLimited    = errors.New("rate limited")
	ErrInternal       = errors.New("internal error")
)

type apiError struct {
	status  int
	code    string
	message string
}

// httpError maps a domain error into the wire representation. Unknown errors
// become opaque 500s; domain messages are safe to surface, driver messages
// are not.
func httpError(err error) apiError {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return apiError{http.StatusBadRequest, "invalid_request", "invalid request"}
	case errors.Is(err, ErrUnauthorized):
		return apiError{http.StatusUnauthorized, "unauthorized", "unauthorized"}
	case errors.Is(err, ErrRateLimited):
		return apiError{http.StatusTooManyRequests, "rate_limited", "too many requests"}

	case errors.Is(err, customerdomain.ErrCustomerNotFound),
		errors.Is(err, customerdomain.ErrPartyNotFound),
		errors.Is(err, policydomain.ErrPolicyNotFound),
		errors.Is(err, receiptdomain.ErrReceiptNotFound),
		errors.Is(err, distributiondomain.ErrDistributionNotFound),
		errors.Is(err, distributiondomain.ErrPayoutNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, apikeydomain.ErrAPIKeyNotFound):
		return apiError{http.StatusNotFound, "not_found", err.Error()}

	case errors.Is(err, policydomain.ErrPercentageOverflow),
		errors.Is(err, policydomain.ErrNegativePremium),
		errors.Is(err, policydomain.ErrNegativePercentage),
		errors.Is(err, policydomain.ErrInvalidFrequency),
		errors.Is(err, policydomain.ErrInvalidPolicyType),
		errors.Is(err, customerdomain.ErrInvalidRole),
		errors.Is(err, customerdomain.ErrInvalidParent),
		errors.Is(err, distributiondomain.ErrInvalidAmount),
		errors.Is(err, distributiondomain.ErrInvalidPaymentMode),
		errors.Is(err, receiptdomain.ErrInvalidAmount):
		return apiError{http.StatusUnprocessableEntity, "validation_failed", err.Error()}

	case errors.Is(err, receiptdomain.ErrDuplicateReceipt),
		errors.Is(err, policydomain.ErrDuplicateNumber),
		errors.Is(err, policydomain.ErrPolicyLocked),
		errors.Is(err, distributiondomain.ErrAlreadyDistributed),
		errors.Is(err, distributiondomain.ErrNothingToDistribute),
		errors.Is(err, distributiondomain.ErrOverpayment),
		errors.Is(err, distributiondomain.ErrDistributionCancelled),
		errors.Is(err, distributiondomain.ErrCancelAfterPayment),
		errors.Is(err, invoicedomain.ErrInvoiceAlreadyPaid),
		errors.Is(err, invoicedomain.ErrDuplicateInvoice),
		errors.Is(err, invoicedomain.ErrNothingToInvoice),
		errors.Is(err, apikeydomain.ErrAPIKeyRevoked):
		return apiError{http.StatusConflict, "conflict", err.Error()}

	case errors.Is(err, apikeydomain.ErrInvalidAPIKey):
		return apiError{http.StatusUnauthorized, "unauthorized", "unauthorized"}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apiError{http.StatusUnprocessableEntity, "validation_failed", "validation failed"}
	}

	return apiError{http.StatusInternalServerError, "internal_error", "internal error"}
}

func AbortWithError(c *gin.Context, err error) {
	e := httpError(err)
	c.AbortWithStatusJSON(e.status, gin.H{
		"error": gin.H{
			"code":    e.code,
			"message": e.message,
		},
	})
}
