package domain

import "errors"

var (
	ErrDistributionNotFound  = errors.New("distribution: not found")
	ErrPayoutNotFound        = errors.New("distribution: payout not found")
	ErrAlreadyDistributed    = errors.New("distribution: receipt already distributed")
	ErrNothingToDistribute   = errors.New("distribution: policy has no role percentages to distribute")
	ErrOverpayment           = errors.New("distribution: amount exceeds pending balance")
	ErrInvalidAmount         = errors.New("distribution: payment amount must be positive")
	ErrInvalidPaymentMode    = errors.New("distribution: unrecognized payment mode")
	ErrDistributionCancelled = errors.New("distribution: distribution is cancelled")
	ErrCancelAfterPayment    = errors.New("distribution: cannot cancel once payments were recorded")
)
