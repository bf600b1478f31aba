package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/policywaylabs/policyway/internal/clock"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	policyrepo "github.com/policywaylabs/policyway/internal/policy/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stubLockChecker marks every policy as referenced by a receipt.
type stubLockChecker struct{ locked bool }

func (s stubLockChecker) IsPolicyLocked(context.Context, policydomain.PolicyType, snowflake.ID) (bool, error) {
	return s.locked, nil
}

type policyFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	party *customerdomain.Party
}

func newPolicyService(t *testing.T, locks policydomain.LockChecker) (policydomain.Service, *policyFixture) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&customerdomain.Party{},
		&policydomain.Policy{},
		&policydomain.RoleShare{},
		&policydomain.Installment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.New(),
		Repo:  policyrepo.Provide(),
		Locks: locks,
	})

	party := &customerdomain.Party{ID: node.Generate(), Role: customerdomain.RoleMainAgent, Name: "Agent", Email: "agent@example.com"}
	require.NoError(t, db.Create(party).Error)

	return svc, &policyFixture{db: db, node: node, party: party}
}

func (f *policyFixture) createRequest() policydomain.CreateRequest {
	return policydomain.CreateRequest{
		CustomerID:                f.node.Generate().String(),
		PolicyType:                policydomain.PolicyTypeHealth,
		PolicyNumber:              "HLT-2024-0042",
		InsurerName:               "Acme General",
		TotalPremium:              decimal.NewFromInt(25000),
		NetPremium:                decimal.NewFromInt(23000),
		GSTPercentage:             decimal.NewFromInt(18),
		CompanyExpensesPercentage: decimal.NewFromInt(2),
		PaymentFrequency:          policydomain.FrequencyQuarterly,
		StartDate:                 "2024-04-01",
		TermYears:                 1,
		Shares: []policydomain.ShareInput{{
			Role:                 customerdomain.RoleMainAgent,
			PartyID:              f.party.ID.String(),
			CommissionPercentage: decimal.NewFromInt(10),
			TDSPercentage:        decimal.NewFromInt(5),
		}},
	}
}

func TestCreatePolicy(t *testing.T) {
	svc, f := newPolicyService(t, nil)
	ctx := context.Background()

	policy, err := svc.Create(ctx, f.createRequest())
	require.NoError(t, err)
	require.Len(t, policy.Shares, 1)

	// 10% of 25000 minus 5% TDS.
	share := policy.Shares[0]
	require.True(t, share.CommissionAmount.Equal(decimal.NewFromInt(2500)))
	require.True(t, share.TDSAmount.Equal(decimal.NewFromInt(125)))
	require.True(t, share.AfterTDSValue.Equal(decimal.NewFromInt(2375)))
	require.True(t, policy.CompanyExpensesAmount.Equal(decimal.NewFromInt(500)))

	// Quarterly over one year yields four installments of 6250.
	installments, err := svc.ListInstallments(ctx, policy.ID.String())
	require.NoError(t, err)
	require.Len(t, installments, 4)
	for _, installment := range installments {
		require.True(t, installment.Amount.Equal(decimal.NewFromInt(6250)))
		require.Nil(t, installment.PaidAt)
	}
	require.Equal(t, "2024-04-01", installments[0].DueDate.Format("2006-01-02"))
	require.Equal(t, "2025-01-01", installments[3].DueDate.Format("2006-01-02"))
}

func TestCreatePolicyRejectsDuplicateNumber(t *testing.T) {
	svc, f := newPolicyService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.createRequest())
	require.NoError(t, err)

	_, err = svc.Create(ctx, f.createRequest())
	require.ErrorIs(t, err, policydomain.ErrDuplicateNumber)
}

func TestCreatePolicyRejectsOversubscribedShares(t *testing.T) {
	svc, f := newPolicyService(t, nil)
	ctx := context.Background()

	req := f.createRequest()
	req.Shares[0].CommissionPercentage = decimal.NewFromInt(99)
	_, err := svc.Create(ctx, req)
	require.ErrorIs(t, err, policydomain.ErrPercentageOverflow)

	req = f.createRequest()
	req.PaymentFrequency = policydomain.PaymentFrequency("weekly")
	_, err = svc.Create(ctx, req)
	require.ErrorIs(t, err, policydomain.ErrInvalidFrequency)

	req = f.createRequest()
	req.Shares[0].Role = customerdomain.Role("referrer")
	_, err = svc.Create(ctx, req)
	require.ErrorIs(t, err, customerdomain.ErrInvalidRole)
}

func TestUpdateRecomputesTerms(t *testing.T) {
	svc, f := newPolicyService(t, stubLockChecker{locked: false})
	ctx := context.Background()

	policy, err := svc.Create(ctx, f.createRequest())
	require.NoError(t, err)

	doubled := decimal.NewFromInt(50000)
	updated, err := svc.Update(ctx, policy.ID.String(), policydomain.UpdateRequest{
		TotalPremium: &doubled,
	})
	require.NoError(t, err)
	require.True(t, updated.Shares[0].CommissionAmount.Equal(decimal.NewFromInt(5000)))
	require.True(t, updated.CompanyExpensesAmount.Equal(decimal.NewFromInt(1000)))
}

func TestUpdateRefusedOnceReceiptExists(t *testing.T) {
	svc, f := newPolicyService(t, stubLockChecker{locked: true})
	ctx := context.Background()

	policy, err := svc.Create(ctx, f.createRequest())
	require.NoError(t, err)

	doubled := decimal.NewFromInt(50000)
	_, err = svc.Update(ctx, policy.ID.String(), policydomain.UpdateRequest{TotalPremium: &doubled})
	require.ErrorIs(t, err, policydomain.ErrPolicyLocked)
}

func TestMarkInstallmentPaid(t *testing.T) {
	svc, f := newPolicyService(t, nil)
	ctx := context.Background()

	policy, err := svc.Create(ctx, f.createRequest())
	require.NoError(t, err)

	installments, err := svc.ListInstallments(ctx, policy.ID.String())
	require.NoError(t, err)

	require.NoError(t, svc.MarkInstallmentPaid(ctx, policy.ID.String(), installments[0].ID.String()))

	after, err := svc.ListInstallments(ctx, policy.ID.String())
	require.NoError(t, err)
	require.NotNil(t, after[0].PaidAt)
	require.Nil(t, after[1].PaidAt)
}
