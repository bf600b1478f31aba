package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	auditdomain "github.com/policywaylabs/policyway/internal/audit/domain"
	"github.com/policywaylabs/policyway/internal/clock"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	distributiondomain "github.com/policywaylabs/policyway/internal/distribution/domain"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	receiptdomain "github.com/policywaylabs/policyway/internal/receipt/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	validate    *validator.Validate
	repo        distributiondomain.Repository
	receiptRepo receiptdomain.Repository
	policyRepo  policydomain.Repository
	auditSvc    auditdomain.Service
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        distributiondomain.Repository
	ReceiptRepo receiptdomain.Repository
	PolicyRepo  policydomain.Repository
	AuditSvc    auditdomain.Service
}

func NewService(p ServiceParam) distributiondomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("distribution.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		validate:    validator.New(),
		repo:        p.Repo,
		receiptRepo: p.ReceiptRepo,
		policyRepo:  p.PolicyRepo,
		auditSvc:    p.AuditSvc,
	}
}

func (s *Service) Distribute(ctx context.Context, receiptID string, performedBy string) ([]*distributiondomain.PayoutDistribution, error) {
	id, err := snowflake.ParseString(receiptID)
	if err != nil {
		return nil, receiptdomain.ErrReceiptNotFound
	}

	var distributions []*distributiondomain.PayoutDistribution
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		distributions, txErr = s.DistributeTx(ctx, tx, id, performedBy)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return distributions, nil
}

// DistributeTx splits the receipt across the policy's non-zero role shares
// plus the company expense bucket, proportionally to their configured
// percentages. The receipt row is locked first so a concurrent call blocks
// and then fails the distributed check instead of duplicating rows.
func (s *Service) DistributeTx(ctx context.Context, tx *gorm.DB, receiptID snowflake.ID, performedBy string) ([]*distributiondomain.PayoutDistribution, error) {
	receipt, err := s.receiptRepo.FindByIDForUpdate(ctx, tx, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, receiptdomain.ErrReceiptNotFound
	}
	if receipt.Distributed() {
		return nil, distributiondomain.ErrAlreadyDistributed
	}

	policy, err := s.policyRepo.FindByID(ctx, tx, receipt.PolicyID)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, policydomain.ErrPolicyNotFound
	}

	entries := splitEntries(policy)
	if len(entries) == 0 {
		return nil, distributiondomain.ErrNothingToDistribute
	}

	distributions := s.buildDistributions(receipt, entries)
	if err := s.repo.InsertDistributions(ctx, tx, distributions); err != nil {
		return nil, err
	}

	payout := s.buildPayout(receipt, distributions)
	if err := s.repo.InsertPayout(ctx, tx, payout); err != nil {
		return nil, err
	}

	now := s.clock.Now(ctx)
	if err := s.receiptRepo.MarkDistributed(ctx, tx, receipt.ID, now); err != nil {
		return nil, err
	}

	changes := map[string]any{
		"total_distributed": receipt.TotalCommissionReceived.String(),
		"recipients":        len(distributions),
		"payout_id":         payout.ID.String(),
	}
	if err := s.auditSvc.AppendTx(ctx, tx, "commission_receipt", receipt.ID, auditdomain.ActionDistributed, changes, performedBy); err != nil {
		return nil, err
	}

	s.log.Info("receipt distributed",
		zap.String("receipt_id", receipt.ID.String()),
		zap.Int("recipients", len(distributions)),
	)
	return distributions, nil
}

func (s *Service) RecordPayment(ctx context.Context, req distributiondomain.RecordPaymentRequest) (*distributiondomain.PayoutDistribution, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if !req.Mode.Valid() {
		return nil, distributiondomain.ErrInvalidPaymentMode
	}
	if !req.Amount.IsPositive() {
		return nil, distributiondomain.ErrInvalidAmount
	}

	distributionID, err := snowflake.ParseString(req.DistributionID)
	if err != nil {
		return nil, distributiondomain.ErrDistributionNotFound
	}

	var distribution *distributiondomain.PayoutDistribution
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		distribution, err = s.repo.FindDistributionByIDForUpdate(ctx, tx, distributionID)
		if err != nil {
			return err
		}
		if distribution == nil {
			return distributiondomain.ErrDistributionNotFound
		}
		if distribution.Status == distributiondomain.StatusCancelled {
			return distributiondomain.ErrDistributionCancelled
		}
		if req.Amount.GreaterThan(distribution.PendingAmount) {
			return distributiondomain.ErrOverpayment
		}

		distribution.PaidAmount = distribution.PaidAmount.Add(req.Amount)
		distribution.PendingAmount = distribution.PendingAmount.Sub(req.Amount)
		if distribution.PendingAmount.IsZero() {
			distribution.Status = distributiondomain.StatusPaid
		} else {
			distribution.Status = distributiondomain.StatusPartial
		}
		if err := s.repo.UpdateDistribution(ctx, tx, distribution); err != nil {
			return err
		}

		now := s.clock.Now(ctx)
		payment := &distributiondomain.DistributionPayment{
			ID:             s.genID.Generate(),
			DistributionID: distribution.ID,
			Amount:         req.Amount,
			Mode:           req.Mode,
			TransactionID:  req.TransactionID,
			PaidAt:         now,
		}
		if err := s.repo.InsertPayment(ctx, tx, payment); err != nil {
			return err
		}

		if err := s.syncPayoutAfterPayment(ctx, tx, distribution, req.TransactionID); err != nil {
			return err
		}

		return s.auditSvc.AppendTx(ctx, tx, "payout_distribution", distribution.ID, auditdomain.ActionPaid, map[string]any{
			"amount":         req.Amount.String(),
			"mode":           string(req.Mode),
			"transaction_id": req.TransactionID,
			"paid_amount":    distribution.PaidAmount.String(),
			"pending_amount": distribution.PendingAmount.String(),
			"status":         string(distribution.Status),
		}, req.PerformedBy)
	})
	if err != nil {
		return nil, err
	}
	return distribution, nil
}

// Cancel withdraws a distribution no payment was recorded against. Paid and
// partially paid rows cannot be cancelled; reversing real money movement is a
// manual accounting correction, not a state flip.
func (s *Service) Cancel(ctx context.Context, distributionID string, reason string, performedBy string) (*distributiondomain.PayoutDistribution, error) {
	id, err := snowflake.ParseString(distributionID)
	if err != nil {
		return nil, distributiondomain.ErrDistributionNotFound
	}

	var distribution *distributiondomain.PayoutDistribution
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		distribution, err = s.repo.FindDistributionByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if distribution == nil {
			return distributiondomain.ErrDistributionNotFound
		}
		if distribution.Status == distributiondomain.StatusCancelled {
			return distributiondomain.ErrDistributionCancelled
		}
		if !distribution.PaidAmount.IsZero() {
			return distributiondomain.ErrCancelAfterPayment
		}

		distribution.Status = distributiondomain.StatusCancelled
		if err := s.repo.UpdateDistribution(ctx, tx, distribution); err != nil {
			return err
		}

		return s.auditSvc.AppendTx(ctx, tx, "payout_distribution", distribution.ID, auditdomain.ActionCancelled, map[string]any{
			"reason": reason,
		}, performedBy)
	})
	if err != nil {
		return nil, err
	}
	return distribution, nil
}

func (s *Service) Get(ctx context.Context, distributionID string) (*distributiondomain.PayoutDistribution, error) {
	id, err := snowflake.ParseString(distributionID)
	if err != nil {
		return nil, distributiondomain.ErrDistributionNotFound
	}
	distribution, err := s.repo.FindDistributionByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if distribution == nil {
		return nil, distributiondomain.ErrDistributionNotFound
	}
	return distribution, nil
}

func (s *Service) ListByReceipt(ctx context.Context, receiptID string) ([]*distributiondomain.PayoutDistribution, error) {
	id, err := snowflake.ParseString(receiptID)
	if err != nil {
		return nil, receiptdomain.ErrReceiptNotFound
	}
	return s.repo.ListByReceipt(ctx, s.db, id)
}

func (s *Service) ListPayments(ctx context.Context, distributionID string) ([]distributiondomain.DistributionPayment, error) {
	id, err := snowflake.ParseString(distributionID)
	if err != nil {
		return nil, distributiondomain.ErrDistributionNotFound
	}
	return s.repo.ListPayments(ctx, s.db, id)
}

func (s *Service) GetPayout(ctx context.Context, policyType policydomain.PolicyType, policyID string) (*distributiondomain.Payout, error) {
	id, err := snowflake.ParseString(policyID)
	if err != nil {
		return nil, distributiondomain.ErrPayoutNotFound
	}
	payout, err := s.repo.FindPayoutByPolicy(ctx, s.db, policyType, id)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, distributiondomain.ErrPayoutNotFound
	}
	return payout, nil
}

// splitEntry is one recipient's weight in the proportional split.
type splitEntry struct {
	recipientType string
	recipientID   snowflake.ID
	weight        decimal.Decimal
}

func splitEntries(policy *policydomain.Policy) []splitEntry {
	entries := make([]splitEntry, 0, len(policy.Shares)+1)
	for _, share := range policy.Shares {
		if !share.CommissionPercentage.IsPositive() {
			continue
		}
		entries = append(entries, splitEntry{
			recipientType: string(share.Role),
			recipientID:   share.PartyID,
			weight:        share.CommissionPercentage,
		})
	}
	if policy.CompanyExpensesPercentage.IsPositive() {
		entries = append(entries, splitEntry{
			recipientType: distributiondomain.RecipientTypeCompanyExpense,
			recipientID:   policy.ID,
			weight:        policy.CompanyExpensesPercentage,
		})
	}
	return entries
}

// buildDistributions allocates the receipt total proportionally to each
// entry's weight using the largest remainder method, so the rows sum exactly
// to the total and no row goes negative.
func (s *Service) buildDistributions(receipt *receiptdomain.CommissionReceipt, entries []splitEntry) []*distributiondomain.PayoutDistribution {
	weights := make([]decimal.Decimal, len(entries))
	totalWeight := decimal.Zero
	for i, entry := range entries {
		weights[i] = entry.weight
		totalWeight = totalWeight.Add(entry.weight)
	}
	amounts := splitLargestRemainder(receipt.TotalCommissionReceived, weights)

	distributions := make([]*distributiondomain.PayoutDistribution, 0, len(entries))
	for i, entry := range entries {
		distributions = append(distributions, &distributiondomain.PayoutDistribution{
			ID:                     s.genID.Generate(),
			ReceiptID:              receipt.ID,
			RecipientType:          entry.recipientType,
			RecipientID:            entry.recipientID,
			DistributionPercentage: entry.weight.Mul(hundred).Div(totalWeight).Round(2),
			CalculatedAmount:       amounts[i],
			PaidAmount:             decimal.Zero,
			PendingAmount:          amounts[i],
			Status:                 distributiondomain.StatusPending,
		})
	}
	return distributions
}

// splitLargestRemainder divides total across weights in whole paise. Each
// share is truncated to 2 places first, which can only under-allocate, then
// the leftover paise go one at a time to the shares that lost the most to
// truncation. Truncating instead of rounding keeps every share non-negative
// no matter how the fractions fall.
func splitLargestRemainder(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	totalWeight := decimal.Zero
	for _, w := range weights {
		totalWeight = totalWeight.Add(w)
	}

	amounts := make([]decimal.Decimal, len(weights))
	remainders := make([]decimal.Decimal, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		exact := total.Mul(w).Div(totalWeight)
		amounts[i] = exact.RoundDown(2)
		remainders[i] = exact.Sub(amounts[i])
		allocated = allocated.Add(amounts[i])
	}

	paisa := decimal.New(1, -2)
	leftover := total.Sub(allocated)
	for leftover.GreaterThanOrEqual(paisa) {
		best := 0
		for i := 1; i < len(remainders); i++ {
			if remainders[i].GreaterThan(remainders[best]) {
				best = i
			}
		}
		amounts[best] = amounts[best].Add(paisa)
		remainders[best] = decimal.Zero
		leftover = leftover.Sub(paisa)
	}
	// A sub-paisa tail only appears when the total itself has more than 2
	// decimal places; park it on the first share so the sum stays exact.
	if leftover.IsPositive() {
		amounts[0] = amounts[0].Add(leftover)
	}
	return amounts
}

func (s *Service) buildPayout(receipt *receiptdomain.CommissionReceipt, distributions []*distributiondomain.PayoutDistribution) *distributiondomain.Payout {
	payout := &distributiondomain.Payout{
		ID:          s.genID.Generate(),
		PolicyType:  receipt.PolicyType,
		PolicyID:    receipt.PolicyID,
		ReceiptID:   receipt.ID,
		TotalAmount: receipt.TotalCommissionReceived,
	}
	for _, d := range distributions {
		id := d.ID
		switch d.RecipientType {
		case string(customerdomain.RoleMainAgent):
			payout.MainAgentPercentage = d.DistributionPercentage
			payout.MainAgentAmount = d.CalculatedAmount
			payout.MainAgentCommissionID = &id
		case string(customerdomain.RoleSubAgent):
			payout.AffiliatePercentage = d.DistributionPercentage
			payout.AffiliateAmount = d.CalculatedAmount
			payout.AffiliateCommissionID = &id
		case string(customerdomain.RoleDistributor):
			payout.DistributorPercentage = d.DistributionPercentage
			payout.DistributorAmount = d.CalculatedAmount
			payout.DistributorCommissionID = &id
		case string(customerdomain.RoleAmbassador):
			payout.AmbassadorPercentage = d.DistributionPercentage
			payout.AmbassadorAmount = d.CalculatedAmount
			payout.AmbassadorCommissionID = &id
		case string(customerdomain.RoleInvestor):
			payout.InvestorPercentage = d.DistributionPercentage
			payout.InvestorAmount = d.CalculatedAmount
			payout.InvestorCommissionID = &id
		case distributiondomain.RecipientTypeCompanyExpense:
			payout.CompanyExpensePercentage = d.DistributionPercentage
			payout.CompanyExpenseAmount = d.CalculatedAmount
			payout.CompanyExpenseCommissionID = &id
		}
	}
	return payout
}

// syncPayoutAfterPayment keeps the denormalized payout summary in step with
// the distribution rows it mirrors, in the same transaction as the payment.
func (s *Service) syncPayoutAfterPayment(ctx context.Context, tx *gorm.DB, distribution *distributiondomain.PayoutDistribution, transactionID string) error {
	payout, err := s.repo.FindPayoutByReceipt(ctx, tx, distribution.ReceiptID)
	if err != nil {
		return err
	}
	if payout == nil {
		return nil
	}

	if distribution.RecipientType == string(customerdomain.RoleMainAgent) &&
		distribution.Status == distributiondomain.StatusPaid {
		now := s.clock.Now(ctx)
		payout.MainAgentCommissionReceived = true
		payout.MainAgentReceivedDate = &now
		payout.MainAgentTransactionID = transactionID
		return s.repo.UpdatePayout(ctx, tx, payout)
	}
	return nil
}
