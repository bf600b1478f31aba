package domain

import (
	"testing"

	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func pct(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestComputeSplitsPremiumAcrossRoles(t *testing.T) {
	premium := decimal.NewFromInt(25000)
	roles := map[customerdomain.Role]RolePercent{
		customerdomain.RoleMainAgent:   {Commission: pct("10"), TDS: pct("5")},
		customerdomain.RoleSubAgent:    {Commission: pct("2"), TDS: pct("5")},
		customerdomain.RoleDistributor: {Commission: pct("1"), TDS: pct("5")},
		customerdomain.RoleAmbassador:  {Commission: pct("2"), TDS: pct("5")},
	}

	breakdown, err := Compute(premium, roles, pct("2"))
	require.NoError(t, err)

	mainAgent := breakdown.Roles[customerdomain.RoleMainAgent]
	require.True(t, mainAgent.CommissionAmount.Equal(pct("2500")), "got %s", mainAgent.CommissionAmount)
	require.True(t, mainAgent.TDSAmount.Equal(pct("125")))
	require.True(t, mainAgent.AfterTDSValue.Equal(pct("2375")))

	subAgent := breakdown.Roles[customerdomain.RoleSubAgent]
	require.True(t, subAgent.CommissionAmount.Equal(pct("500")))

	distributor := breakdown.Roles[customerdomain.RoleDistributor]
	require.True(t, distributor.CommissionAmount.Equal(pct("250")))

	require.True(t, breakdown.CompanyExpensesAmount.Equal(pct("500")))
	require.True(t, breakdown.ProfitPercentage.Equal(pct("83")))
	require.True(t, breakdown.ProfitAmount.Equal(pct("20750")))
}

func TestComputeRoundsHalfUp(t *testing.T) {
	// 1333.33 * 7.5% = 99.99975 -> 100.00
	premium := decimal.RequireFromString("1333.33")
	roles := map[customerdomain.Role]RolePercent{
		customerdomain.RoleMainAgent: {Commission: pct("7.5"), TDS: pct("10")},
	}

	breakdown, err := Compute(premium, roles, decimal.Zero)
	require.NoError(t, err)

	mainAgent := breakdown.Roles[customerdomain.RoleMainAgent]
	require.True(t, mainAgent.CommissionAmount.Equal(pct("100")), "got %s", mainAgent.CommissionAmount)
	require.True(t, mainAgent.TDSAmount.Equal(pct("10")))
	require.True(t, mainAgent.AfterTDSValue.Equal(pct("90")))
}

func TestComputeRejectsPercentageOverflow(t *testing.T) {
	roles := map[customerdomain.Role]RolePercent{
		customerdomain.RoleMainAgent: {Commission: pct("60")},
		customerdomain.RoleInvestor:  {Commission: pct("39")},
	}

	_, err := Compute(decimal.NewFromInt(1000), roles, pct("2"))
	require.ErrorIs(t, err, ErrPercentageOverflow)

	// Exactly 100 is allowed.
	_, err = Compute(decimal.NewFromInt(1000), roles, pct("1"))
	require.NoError(t, err)
}

func TestComputeRejectsNegativeInputs(t *testing.T) {
	_, err := Compute(decimal.NewFromInt(-1), nil, decimal.Zero)
	require.ErrorIs(t, err, ErrNegativePremium)

	roles := map[customerdomain.Role]RolePercent{
		customerdomain.RoleMainAgent: {Commission: pct("-5")},
	}
	_, err = Compute(decimal.NewFromInt(1000), roles, decimal.Zero)
	require.ErrorIs(t, err, ErrNegativePercentage)

	_, err = Compute(decimal.NewFromInt(1000), nil, pct("-1"))
	require.ErrorIs(t, err, ErrNegativePercentage)
}

func TestComputeZeroPremium(t *testing.T) {
	roles := map[customerdomain.Role]RolePercent{
		customerdomain.RoleMainAgent: {Commission: pct("10"), TDS: pct("5")},
	}

	breakdown, err := Compute(decimal.Zero, roles, pct("2"))
	require.NoError(t, err)
	require.True(t, breakdown.Roles[customerdomain.RoleMainAgent].CommissionAmount.IsZero())
	require.True(t, breakdown.CompanyExpensesAmount.IsZero())
}
