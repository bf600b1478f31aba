package domain

import "errors"

var (
	ErrPolicyNotFound     = errors.New("policy: not found")
	ErrInvalidPolicyType  = errors.New("policy: invalid policy type")
	ErrPercentageOverflow = errors.New("policy: role percentages plus company expenses exceed 100")
	ErrNegativePercentage = errors.New("policy: percentages must not be negative")
	ErrNegativePremium    = errors.New("policy: premium must not be negative")
	ErrPolicyLocked       = errors.New("policy: locked by an existing commission receipt")
	ErrInvalidFrequency   = errors.New("policy: unrecognized payment frequency")
	ErrDuplicateNumber    = errors.New("policy: policy number already exists")
)
