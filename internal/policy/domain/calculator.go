package domain

import (
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
)

// RolePercent carries the configured commission and TDS percentages for one role.
type RolePercent struct {
	Commission decimal.Decimal
	TDS        decimal.Decimal
}

// RoleAmounts is the calculator output for one role.
type RoleAmounts struct {
	CommissionAmount decimal.Decimal
	TDSAmount        decimal.Decimal
	AfterTDSValue    decimal.Decimal
}

// Breakdown is the full commission split of a premium.
type Breakdown struct {
	Roles                 map[customerdomain.Role]RoleAmounts
	CompanyExpensesAmount decimal.Decimal
	ProfitPercentage      decimal.Decimal
	ProfitAmount          decimal.Decimal
}

// Compute splits a premium across the configured roles. Results are rounded
// half-up to 2 places, the convention of accounting displays. A percentage sum
// above 100 is rejected outright, never clamped.
func Compute(premium decimal.Decimal, roles map[customerdomain.Role]RolePercent, companyExpensePct decimal.Decimal) (*Breakdown, error) {
	if premium.IsNegative() {
		return nil, ErrNegativePremium
	}
	if companyExpensePct.IsNegative() {
		return nil, ErrNegativePercentage
	}

	total := companyExpensePct
	for _, pct := range roles {
		if pct.Commission.IsNegative() || pct.TDS.IsNegative() {
			return nil, ErrNegativePercentage
		}
		total = total.Add(pct.Commission)
	}
	if total.GreaterThan(hundred) {
		return nil, ErrPercentageOverflow
	}

	out := &Breakdown{Roles: make(map[customerdomain.Role]RoleAmounts, len(roles))}
	for role, pct := range roles {
		commission := roundMoney(premium.Mul(pct.Commission).Div(hundred))
		tds := roundMoney(commission.Mul(pct.TDS).Div(hundred))
		out.Roles[role] = RoleAmounts{
			CommissionAmount: commission,
			TDSAmount:        tds,
			AfterTDSValue:    commission.Sub(tds),
		}
	}

	out.CompanyExpensesAmount = roundMoney(premium.Mul(companyExpensePct).Div(hundred))
	out.ProfitPercentage = hundred.Sub(total)
	out.ProfitAmount = roundMoney(premium.Mul(out.ProfitPercentage).Div(hundred))
	return out, nil
}

// roundMoney rounds half-up to 2 decimal places. shopspring's Round is
// half-away-from-zero, which coincides with half-up for the non-negative
// amounts handled here.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
