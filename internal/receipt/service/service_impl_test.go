package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/policywaylabs/policyway/internal/audit/domain"
	auditrepo "github.com/policywaylabs/policyway/internal/audit/repository"
	auditservice "github.com/policywaylabs/policyway/internal/audit/service"
	"github.com/policywaylabs/policyway/internal/clock"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	distributiondomain "github.com/policywaylabs/policyway/internal/distribution/domain"
	distributionrepo "github.com/policywaylabs/policyway/internal/distribution/repository"
	distributionservice "github.com/policywaylabs/policyway/internal/distribution/service"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	policyrepo "github.com/policywaylabs/policyway/internal/policy/repository"
	receiptdomain "github.com/policywaylabs/policyway/internal/receipt/domain"
	receiptrepo "github.com/policywaylabs/policyway/internal/receipt/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ledgerFixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	svc    receiptdomain.Service
	policy *policydomain.Policy
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&customerdomain.Customer{},
		&customerdomain.Party{},
		&policydomain.Policy{},
		&policydomain.RoleShare{},
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
	distributor := distributionservice.NewService(distributionservice.ServiceParam{
		DB:          db,
		Log:         logger,
		GenID:       node,
		Clock:       clk,
		Repo:        distributionrepo.Provide(),
		ReceiptRepo: receiptrepo.Provide(),
		PolicyRepo:  policyrepo.Provide(),
		AuditSvc:    auditSvc,
	})
	svc := NewService(ServiceParam{
		DB:          db,
		Log:         logger,
		GenID:       node,
		Clock:       clk,
		Repo:        receiptrepo.Provide(),
		PolicyRepo:  policyrepo.Provide(),
		Distributor: distributor,
		AuditSvc:    auditSvc,
	})

	customer := &customerdomain.Customer{ID: node.Generate(), Name: "Holder", Email: "holder@example.com"}
	require.NoError(t, db.Create(customer).Error)
	party := &customerdomain.Party{ID: node.Generate(), Role: customerdomain.RoleMainAgent, Name: "Agent", Email: "agent@example.com"}
	require.NoError(t, db.Create(party).Error)

	policy := &policydomain.Policy{
		ID:                        node.Generate(),
		CustomerID:                customer.ID,
		PolicyType:                policydomain.PolicyTypeHealth,
		PolicyNumber:              "HLT-2024-0042",
		InsurerName:               "Acme General",
		TotalPremium:              decimal.NewFromInt(25000),
		NetPremium:                decimal.NewFromInt(25000),
		CompanyExpensesPercentage: decimal.NewFromInt(2),
		PaymentFrequency:          policydomain.FrequencyYearly,
		StartDate:                 time.Now().UTC(),
		Shares: []policydomain.RoleShare{{
			ID:                   node.Generate(),
			Role:                 customerdomain.RoleMainAgent,
			PartyID:              party.ID,
			CommissionPercentage: decimal.NewFromInt(10),
		}},
	}
	require.NoError(t, db.Create(policy).Error)

	return &ledgerFixture{db: db, node: node, svc: svc, policy: policy}
}

func TestRecordReceipt(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	receipt, err := f.svc.RecordReceipt(ctx, receiptdomain.RecordReceiptRequest{
		PolicyType:              f.policy.PolicyType,
		PolicyID:                f.policy.ID.String(),
		TotalCommissionReceived: decimal.NewFromInt(3000),
		ReceivedDate:            "2024-06-01",
		PerformedBy:             "ops@example.com",
	})
	require.NoError(t, err)
	require.NotEmpty(t, receipt.ReferenceKey)
	require.Nil(t, receipt.DistributedAt)
	require.Equal(t, time.June, receipt.ReceivedDate.Month())

	var logs []auditdomain.AuditLog
	require.NoError(t, f.db.Where("auditable_type = ?", "commission_receipt").Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, auditdomain.ActionCreated, logs[0].Action)
}

func TestRecordReceiptRejectsSecondReceipt(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	req := receiptdomain.RecordReceiptRequest{
		PolicyType:              f.policy.PolicyType,
		PolicyID:                f.policy.ID.String(),
		TotalCommissionReceived: decimal.NewFromInt(3000),
		ReceivedDate:            "2024-06-01",
	}
	_, err := f.svc.RecordReceipt(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.RecordReceipt(ctx, req)
	require.ErrorIs(t, err, receiptdomain.ErrDuplicateReceipt)
}

func TestRecordReceiptValidatesInput(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordReceipt(ctx, receiptdomain.RecordReceiptRequest{
		PolicyType:              f.policy.PolicyType,
		PolicyID:                f.policy.ID.String(),
		TotalCommissionReceived: decimal.Zero,
		ReceivedDate:            "2024-06-01",
	})
	require.ErrorIs(t, err, receiptdomain.ErrInvalidAmount)

	_, err = f.svc.RecordReceipt(ctx, receiptdomain.RecordReceiptRequest{
		PolicyType:              policydomain.PolicyTypeMotor,
		PolicyID:                f.policy.ID.String(),
		TotalCommissionReceived: decimal.NewFromInt(100),
		ReceivedDate:            "2024-06-01",
	})
	require.ErrorIs(t, err, policydomain.ErrPolicyNotFound)

	_, err = f.svc.RecordReceipt(ctx, receiptdomain.RecordReceiptRequest{
		PolicyType:              policydomain.PolicyType("crop"),
		PolicyID:                f.policy.ID.String(),
		TotalCommissionReceived: decimal.NewFromInt(100),
		ReceivedDate:            "2024-06-01",
	})
	require.ErrorIs(t, err, policydomain.ErrInvalidPolicyType)
}

func TestRecordReceiptAutoDistributes(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	receipt, err := f.svc.RecordReceipt(ctx, receiptdomain.RecordReceiptRequest{
		PolicyType:              f.policy.PolicyType,
		PolicyID:                f.policy.ID.String(),
		TotalCommissionReceived: decimal.NewFromInt(3000),
		ReceivedDate:            "2024-06-01",
		AutoDistribute:          true,
		PerformedBy:             "ops@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, receipt.DistributedAt)

	// 10 agent points plus the 2 point company bucket: 2500 / 500.
	var distributions []distributiondomain.PayoutDistribution
	require.NoError(t, f.db.Where("receipt_id = ?", receipt.ID).Order("recipient_type").Find(&distributions).Error)
	require.Len(t, distributions, 2)
	require.Equal(t, distributiondomain.RecipientTypeCompanyExpense, distributions[0].RecipientType)
	require.True(t, distributions[0].CalculatedAmount.Equal(decimal.NewFromInt(500)))
	require.True(t, distributions[1].CalculatedAmount.Equal(decimal.NewFromInt(2500)))
}
