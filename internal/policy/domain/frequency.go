package domain

import "time"

// PaymentFrequency is a closed set. Free-text frequencies are rejected at the
// boundary instead of silently producing no due date.
type PaymentFrequency string

const (
	FrequencyMonthly    PaymentFrequency = "monthly"
	FrequencyQuarterly  PaymentFrequency = "quarterly"
	FrequencyHalfYearly PaymentFrequency = "half_yearly"
	FrequencyYearly     PaymentFrequency = "yearly"
)

// Period returns the number of months between installments.
func (f PaymentFrequency) Period() (int, error) {
	switch f {
	case FrequencyMonthly:
		return 1, nil
	case FrequencyQuarterly:
		return 3, nil
	case FrequencyHalfYearly:
		return 6, nil
	case FrequencyYearly:
		return 12, nil
	}
	return 0, ErrInvalidFrequency
}

// InstallmentsPerYear returns how many installments one policy year carries.
func (f PaymentFrequency) InstallmentsPerYear() (int, error) {
	months, err := f.Period()
	if err != nil {
		return 0, err
	}
	return 12 / months, nil
}

// NextDueDate advances a due date by one period.
func (f PaymentFrequency) NextDueDate(from time.Time) (time.Time, error) {
	months, err := f.Period()
	if err != nil {
		return time.Time{}, err
	}
	return from.AddDate(0, months, 0), nil
}
