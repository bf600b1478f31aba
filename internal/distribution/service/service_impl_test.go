package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	auditdomain "github.com/policywaylabs/policyway/internal/audit/domain"
	auditrepo "github.com/policywaylabs/policyway/internal/audit/repository"
	auditservice "github.com/policywaylabs/policyway/internal/audit/service"
	"github.com/policywaylabs/policyway/internal/clock"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	distributiondomain "github.com/policywaylabs/policyway/internal/distribution/domain"
	distributionrepo "github.com/policywaylabs/policyway/internal/distribution/repository"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	policyrepo "github.com/policywaylabs/policyway/internal/policy/repository"
	receiptdomain "github.com/policywaylabs/policyway/internal/receipt/domain"
	receiptrepo "github.com/policywaylabs/policyway/internal/receipt/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type engineFixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	svc     distributiondomain.Service
	repo    distributiondomain.Repository
	receipt *receiptdomain.CommissionReceipt
	policy  *policydomain.Policy
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&customerdomain.Customer{},
		&customerdomain.Party{},
		&policydomain.Policy{},
		&policydomain.RoleShare{},
		&policydomain.Installment{},
		&receiptdomain.CommissionReceipt{},
		&distributiondomain.PayoutDistribution{},
		&distributiondomain.DistributionPayment{},
		&distributiondomain.Payout{},
		&auditdomain.AuditLog{},
	)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	clk := clock.New()

	auditSvc := auditservice.NewService(auditservice.ServiceParam{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  auditrepo.Provide(),
	})

	repo := distributionrepo.Provide()
	svc := NewService(ServiceParam{
		DB:          db,
		Log:         logger,
		GenID:       node,
		Clock:       clk,
		Repo:        repo,
		ReceiptRepo: receiptrepo.Provide(),
		PolicyRepo:  policyrepo.Provide(),
		AuditSvc:    auditSvc,
	})

	f := &engineFixture{db: db, node: node, svc: svc, repo: repo}
	f.seedPolicyAndReceipt(t, decimal.NewFromInt(4250))
	return f
}

// seedPolicyAndReceipt stores a policy with role shares 10/2/1/2 plus a 2%
// company expense bucket, and one undistributed receipt against it.
func (f *engineFixture) seedPolicyAndReceipt(t *testing.T, received decimal.Decimal) {
	t.Helper()

	customer := &customerdomain.Customer{
		ID:    f.node.Generate(),
		Name:  "Holder",
		Email: "holder@example.com",
	}
	require.NoError(t, f.db.Create(customer).Error)

	shares := []struct {
		role customerdomain.Role
		pct  int64
	}{
		{customerdomain.RoleMainAgent, 10},
		{customerdomain.RoleSubAgent, 2},
		{customerdomain.RoleDistributor, 1},
		{customerdomain.RoleAmbassador, 2},
	}

	policy := &policydomain.Policy{
		ID:                        f.node.Generate(),
		CustomerID:                customer.ID,
		PolicyType:                policydomain.PolicyTypeHealth,
		PolicyNumber:              "HLT-" + uuid.NewString()[:8],
		InsurerName:               "Acme General",
		TotalPremium:              decimal.NewFromInt(25000),
		NetPremium:                decimal.NewFromInt(25000),
		CompanyExpensesPercentage: decimal.NewFromInt(2),
		PaymentFrequency:          policydomain.FrequencyYearly,
		StartDate:                 time.Now().UTC(),
	}
	for _, s := range shares {
		party := &customerdomain.Party{
			ID:    f.node.Generate(),
			Role:  s.role,
			Name:  string(s.role),
			Email: string(s.role) + "@example.com",
		}
		require.NoError(t, f.db.Create(party).Error)

		policy.Shares = append(policy.Shares, policydomain.RoleShare{
			ID:                   f.node.Generate(),
			PolicyID:             policy.ID,
			Role:                 s.role,
			PartyID:              party.ID,
			CommissionPercentage: decimal.NewFromInt(s.pct),
		})
	}
	require.NoError(t, f.db.Create(policy).Error)
	f.policy = policy

	receipt := &receiptdomain.CommissionReceipt{
		ID:                      f.node.Generate(),
		PolicyType:              policy.PolicyType,
		PolicyID:                policy.ID,
		TotalCommissionReceived: received,
		ReceivedDate:            time.Now().UTC(),
		ReferenceKey:            uuid.NewString(),
	}
	require.NoError(t, f.db.Create(receipt).Error)
	f.receipt = receipt
}

func amountsByRecipient(distributions []*distributiondomain.PayoutDistribution) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(distributions))
	for _, d := range distributions {
		out[d.RecipientType] = d.CalculatedAmount
	}
	return out
}

func TestDistributeSplitsProportionally(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	distributions, err := f.svc.Distribute(ctx, f.receipt.ID.String(), "tester")
	require.NoError(t, err)
	require.Len(t, distributions, 5)

	// 4250 split over 10+2+1+2+2 = 17 points.
	amounts := amountsByRecipient(distributions)
	require.True(t, amounts[string(customerdomain.RoleMainAgent)].Equal(decimal.NewFromInt(2500)), "got %s", amounts[string(customerdomain.RoleMainAgent)])
	require.True(t, amounts[string(customerdomain.RoleSubAgent)].Equal(decimal.NewFromInt(500)))
	require.True(t, amounts[string(customerdomain.RoleDistributor)].Equal(decimal.NewFromInt(250)))
	require.True(t, amounts[string(customerdomain.RoleAmbassador)].Equal(decimal.NewFromInt(500)))
	require.True(t, amounts[distributiondomain.RecipientTypeCompanyExpense].Equal(decimal.NewFromInt(500)))

	total := decimal.Zero
	for _, d := range distributions {
		require.Equal(t, distributiondomain.StatusPending, d.Status)
		require.True(t, d.PaidAmount.IsZero())
		require.True(t, d.PendingAmount.Equal(d.CalculatedAmount))
		total = total.Add(d.CalculatedAmount)
	}
	require.True(t, total.Equal(f.receipt.TotalCommissionReceived))

	var receipt receiptdomain.CommissionReceipt
	require.NoError(t, f.db.First(&receipt, "id = ?", f.receipt.ID).Error)
	require.NotNil(t, receipt.DistributedAt)

	payout, err := f.svc.GetPayout(ctx, f.policy.PolicyType, f.policy.ID.String())
	require.NoError(t, err)
	require.True(t, payout.MainAgentAmount.Equal(decimal.NewFromInt(2500)))
	require.True(t, payout.CompanyExpenseAmount.Equal(decimal.NewFromInt(500)))
	require.False(t, payout.MainAgentCommissionReceived)
}

func TestDistributeIsIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.svc.Distribute(ctx, f.receipt.ID.String(), "tester")
	require.NoError(t, err)

	_, err = f.svc.Distribute(ctx, f.receipt.ID.String(), "tester")
	require.ErrorIs(t, err, distributiondomain.ErrAlreadyDistributed)

	rows, err := f.svc.ListByReceipt(ctx, f.receipt.ID.String())
	require.NoError(t, err)
	require.Len(t, rows, 5)
}

func TestDistributeRoundsWithoutDrift(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// 100 over 17 points does not divide evenly.
	require.NoError(t, f.db.Model(&receiptdomain.CommissionReceipt{}).
		Where("id = ?", f.receipt.ID).
		Update("total_commission_received", decimal.NewFromInt(100)).Error)

	distributions, err := f.svc.Distribute(ctx, f.receipt.ID.String(), "tester")
	require.NoError(t, err)

	total := decimal.Zero
	for _, d := range distributions {
		total = total.Add(d.CalculatedAmount)
		require.False(t, d.CalculatedAmount.IsNegative(), "%s got %s", d.RecipientType, d.CalculatedAmount)
		require.True(t, d.PaidAmount.Add(d.PendingAmount).Equal(d.CalculatedAmount))
	}
	require.True(t, total.Equal(decimal.NewFromInt(100)), "got %s", total)
}

func TestSplitLargestRemainderNeverGoesNegative(t *testing.T) {
	// Five equal shares of 13 paise each round up to 3 paise, which used to
	// over-allocate and push a trailing sliver share below zero.
	weights := []decimal.Decimal{
		decimal.NewFromInt(10),
		decimal.NewFromInt(10),
		decimal.NewFromInt(10),
		decimal.NewFromInt(10),
		decimal.NewFromInt(10),
		decimal.RequireFromString("0.01"),
	}
	total := decimal.RequireFromString("0.13")

	amounts := splitLargestRemainder(total, weights)
	require.Len(t, amounts, len(weights))

	sum := decimal.Zero
	for i, amount := range amounts {
		require.False(t, amount.IsNegative(), "index %d got %s", i, amount)
		sum = sum.Add(amount)
	}
	require.True(t, sum.Equal(total), "got %s", sum)
}

func TestSplitLargestRemainderFavoursLargestFraction(t *testing.T) {
	weights := []decimal.Decimal{
		decimal.NewFromInt(1),
		decimal.NewFromInt(1),
		decimal.NewFromInt(1),
	}
	amounts := splitLargestRemainder(decimal.RequireFromString("0.10"), weights)

	sum := decimal.Zero
	for _, amount := range amounts {
		sum = sum.Add(amount)
		require.False(t, amount.IsNegative())
	}
	require.True(t, sum.Equal(decimal.RequireFromString("0.10")))
}

func TestRecordPaymentTransitions(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	distributions, err := f.svc.Distribute(ctx, f.receipt.ID.String(), "tester")
	require.NoError(t, err)

	var mainAgent *distributiondomain.PayoutDistribution
	for _, d := range distributions {
		if d.RecipientType == string(customerdomain.RoleMainAgent) {
			mainAgent = d
		}
	}
	require.NotNil(t, mainAgent)

	partial, err := f.svc.RecordPayment(ctx, distributiondomain.RecordPaymentRequest{
		DistributionID: mainAgent.ID.String(),
		Amount:         decimal.NewFromInt(1000),
		Mode:           distributiondomain.PaymentModeUPI,
		TransactionID:  "utr-1",
		PerformedBy:    "tester",
	})
	require.NoError(t, err)
	require.Equal(t, distributiondomain.StatusPartial, partial.Status)
	require.True(t, partial.PaidAmount.Equal(decimal.NewFromInt(1000)))
	require.True(t, partial.PendingAmount.Equal(decimal.NewFromInt(1500)))

	paid, err := f.svc.RecordPayment(ctx, distributiondomain.RecordPaymentRequest{
		DistributionID: mainAgent.ID.String(),
		Amount:         decimal.NewFromInt(1500),
		Mode:           distributiondomain.PaymentModeBankTransfer,
		TransactionID:  "utr-2",
		PerformedBy:    "tester",
	})
	require.NoError(t, err)
	require.Equal(t, distributiondomain.StatusPaid, paid.Status)
	require.True(t, paid.PendingAmount.IsZero())

	payments, err := f.svc.ListPayments(ctx, mainAgent.ID.String())
	require.NoError(t, err)
	require.Len(t, payments, 2)

	// Full payment of the main agent row flips the payout summary flag.
	payout, err := f.svc.GetPayout(ctx, f.policy.PolicyType, f.policy.ID.String())
	require.NoError(t, err)
	require.True(t, payout.MainAgentCommissionReceived)
	require.NotNil(t, payout.MainAgentReceivedDate)
	require.Equal(t, "utr-2", payout.MainAgentTransactionID)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	distributions, err := f.svc.Distribute(ctx, f.receipt.ID.String(), "tester")
	require.NoError(t, err)
	target := distributions[0]

	_, err = f.svc.RecordPayment(ctx, distributiondomain.RecordPaymentRequest{
		DistributionID: target.ID.String(),
		Amount:         target.CalculatedAmount.Add(decimal.NewFromInt(1)),
		Mode:           distributiondomain.PaymentModeCash,
		PerformedBy:    "tester",
	})
	require.ErrorIs(t, err, distributiondomain.ErrOverpayment)

	// Nothing changed on the rejected row.
	after, err := f.svc.Get(ctx, target.ID.String())
	require.NoError(t, err)
	require.Equal(t, distributiondomain.StatusPending, after.Status)
	require.True(t, after.PaidAmount.IsZero())

	payments, err := f.svc.ListPayments(ctx, target.ID.String())
	require.NoError(t, err)
	require.Empty(t, payments)
}

func TestRecordPaymentValidatesInput(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	distributions, err := f.svc.Distribute(ctx, f.receipt.ID.String(), "tester")
	require.NoError(t, err)
	target := distributions[0]

	_, err = f.svc.RecordPayment(ctx, distributiondomain.RecordPaymentRequest{
		DistributionID: target.ID.String(),
		Amount:         decimal.NewFromInt(-5),
		Mode:           distributiondomain.PaymentModeCash,
	})
	require.ErrorIs(t, err, distributiondomain.ErrInvalidAmount)

	_, err = f.svc.RecordPayment(ctx, distributiondomain.RecordPaymentRequest{
		DistributionID: target.ID.String(),
		Amount:         decimal.NewFromInt(5),
		Mode:           distributiondomain.PaymentMode("barter"),
	})
	require.ErrorIs(t, err, distributiondomain.ErrInvalidPaymentMode)
}

func TestCancelOnlyBeforePayment(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	distributions, err := f.svc.Distribute(ctx, f.receipt.ID.String(), "tester")
	require.NoError(t, err)
	first, second := distributions[0], distributions[1]

	cancelled, err := f.svc.Cancel(ctx, first.ID.String(), "recorded in error", "tester")
	require.NoError(t, err)
	require.Equal(t, distributiondomain.StatusCancelled, cancelled.Status)

	// Payments against a cancelled row are refused.
	_, err = f.svc.RecordPayment(ctx, distributiondomain.RecordPaymentRequest{
		DistributionID: first.ID.String(),
		Amount:         decimal.NewFromInt(10),
		Mode:           distributiondomain.PaymentModeCash,
	})
	require.ErrorIs(t, err, distributiondomain.ErrDistributionCancelled)

	// A row with any payment cannot be cancelled.
	_, err = f.svc.RecordPayment(ctx, distributiondomain.RecordPaymentRequest{
		DistributionID: second.ID.String(),
		Amount:         decimal.NewFromInt(10),
		Mode:           distributiondomain.PaymentModeCash,
		PerformedBy:    "tester",
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, second.ID.String(), "too late", "tester")
	require.ErrorIs(t, err, distributiondomain.ErrCancelAfterPayment)
}

func TestDistributeWritesAuditTrail(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.svc.Distribute(ctx, f.receipt.ID.String(), "ops@example.com")
	require.NoError(t, err)

	var logs []auditdomain.AuditLog
	require.NoError(t, f.db.Where("auditable_type = ? AND auditable_id = ?", "commission_receipt", f.receipt.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, auditdomain.ActionDistributed, logs[0].Action)
	require.Equal(t, "ops@example.com", logs[0].PerformedBy)
}
