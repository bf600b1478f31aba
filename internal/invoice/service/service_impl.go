package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	auditdomain "github.com/policywaylabs/policyway/internal/audit/domain"
	"github.com/policywaylabs/policyway/internal/clock"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	distributiondomain "github.com/policywaylabs/policyway/internal/distribution/domain"
	invoicedomain "github.com/policywaylabs/policyway/internal/invoice/domain"
	"github.com/policywaylabs/policyway/internal/invoice/render"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shareTokenBytes = 24

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	validate  *validator.Validate
	repo      invoicedomain.Repository
	distRepo  distributiondomain.Repository
	partyRepo customerdomain.PartyRepository
	auditSvc  auditdomain.Service
	renderer  *render.Renderer
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      invoicedomain.Repository
	DistRepo  distributiondomain.Repository
	PartyRepo customerdomain.PartyRepository
	AuditSvc  auditdomain.Service
	Renderer  *render.Renderer
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		validate:  validator.New(),
		repo:      p.Repo,
		distRepo:  p.DistRepo,
		partyRepo: p.PartyRepo,
		auditSvc:  p.AuditSvc,
		renderer:  p.Renderer,
	}
}

func (s *Service) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	payoutID, err := snowflake.ParseString(req.PayoutID)
	if err != nil {
		if req.PayoutType == invoicedomain.PayoutTypePayout {
			return nil, distributiondomain.ErrPayoutNotFound
		}
		return nil, distributiondomain.ErrDistributionNotFound
	}

	var invoice *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var billed billedPayout
		var err error
		switch req.PayoutType {
		case invoicedomain.PayoutTypePayout:
			billed, err = s.billWholePayout(ctx, tx, payoutID)
		default:
			billed, err = s.billDistribution(ctx, tx, payoutID)
		}
		if err != nil {
			return err
		}

		existing, err := s.repo.FindByPayoutRef(ctx, tx, req.PayoutType, payoutID)
		if err != nil {
			return err
		}
		if existing != nil {
			return invoicedomain.ErrDuplicateInvoice
		}

		token, err := newShareToken()
		if err != nil {
			return err
		}

		now := s.clock.Now(ctx)
		dueDate := req.DueDate
		if dueDate.IsZero() {
			dueDate = now.AddDate(0, 0, 30)
		}

		invoice = &invoicedomain.Invoice{
			ID:            s.genID.Generate(),
			InvoiceNumber: fmt.Sprintf("INV-%s", ulid.Make().String()),
			PayoutType:    req.PayoutType,
			PayoutID:      payoutID,
			RecipientType: billed.recipientType,
			RecipientID:   billed.recipientID,
			RecipientName: billed.recipientName,
			Amount:        billed.amount,
			Status:        invoicedomain.StatusPending,
			Notes:         req.Notes,
			ShareToken:    token,
			IssuedAt:      now,
			DueDate:       dueDate,
		}
		if err := s.repo.Insert(ctx, tx, invoice); err != nil {
			return err
		}

		return s.auditSvc.AppendTx(ctx, tx, "payout_invoice", invoice.ID, auditdomain.ActionCreated, map[string]any{
			"invoice_number": invoice.InvoiceNumber,
			"payout_type":    invoice.PayoutType,
			"payout_id":      payoutID.String(),
			"amount":         invoice.Amount.String(),
		}, req.PerformedBy)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice generated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
	)
	return invoice, nil
}

func (s *Service) MarkPaid(ctx context.Context, invoiceID string, performedBy string) (*invoicedomain.Invoice, error) {
	id, err := snowflake.ParseString(invoiceID)
	if err != nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}

	var invoice *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err = s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return invoicedomain.ErrInvoiceNotFound
		}
		if invoice.Status == invoicedomain.StatusPaid {
			return invoicedomain.ErrInvoiceAlreadyPaid
		}

		now := s.clock.Now(ctx)
		invoice.Status = invoicedomain.StatusPaid
		invoice.PaidAt = &now
		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			return err
		}

		return s.auditSvc.AppendTx(ctx, tx, "payout_invoice", invoice.ID, auditdomain.ActionPaid, map[string]any{
			"invoice_number": invoice.InvoiceNumber,
		}, performedBy)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) Get(ctx context.Context, invoiceID string) (*invoicedomain.Invoice, error) {
	id, err := snowflake.ParseString(invoiceID)
	if err != nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *Service) GetByShareToken(ctx context.Context, token string) (*invoicedomain.Invoice, error) {
	if len(token) != shareTokenBytes*2 {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	invoice, err := s.repo.FindByShareToken(ctx, s.db, token)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context, status invoicedomain.Status, page pagination.Pagination) (*invoicedomain.ListResponse, error) {
	invoices, total, err := s.repo.List(ctx, s.db, status, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	return &invoicedomain.ListResponse{
		Items: invoices,
		PageInfo: pagination.PageInfo{
			NextPageToken: page.NextToken(len(invoices), total),
			TotalCount:    total,
		},
	}, nil
}

func (s *Service) RenderPDF(ctx context.Context, invoice *invoicedomain.Invoice) ([]byte, error) {
	if invoice == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return s.renderer.Render(invoice)
}

func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	now := s.clock.Now(ctx)
	changed, err := s.repo.MarkOverdueBefore(ctx, s.db, now)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", changed))
	}
	return changed, nil
}

// billedPayout is what a generated invoice charges: the recipient it is
// addressed to and the amount owed.
type billedPayout struct {
	recipientType string
	recipientID   snowflake.ID
	recipientName string
	amount        decimal.Decimal
}

func (s *Service) billDistribution(ctx context.Context, tx *gorm.DB, id snowflake.ID) (billedPayout, error) {
	distribution, err := s.distRepo.FindDistributionByID(ctx, tx, id)
	if err != nil {
		return billedPayout{}, err
	}
	if distribution == nil {
		return billedPayout{}, distributiondomain.ErrDistributionNotFound
	}
	if distribution.Status == distributiondomain.StatusCancelled {
		return billedPayout{}, distributiondomain.ErrDistributionCancelled
	}

	name, err := s.recipientName(ctx, tx, distribution)
	if err != nil {
		return billedPayout{}, err
	}
	return billedPayout{
		recipientType: distribution.RecipientType,
		recipientID:   distribution.RecipientID,
		recipientName: name,
		amount:        distribution.CalculatedAmount,
	}, nil
}

// billWholePayout sums the payout's non-cancelled distribution amounts, so a
// consolidated invoice matches what the distribution rows actually owe.
func (s *Service) billWholePayout(ctx context.Context, tx *gorm.DB, id snowflake.ID) (billedPayout, error) {
	payout, err := s.distRepo.FindPayoutByID(ctx, tx, id)
	if err != nil {
		return billedPayout{}, err
	}
	if payout == nil {
		return billedPayout{}, distributiondomain.ErrPayoutNotFound
	}

	distributions, err := s.distRepo.ListByReceipt(ctx, tx, payout.ReceiptID)
	if err != nil {
		return billedPayout{}, err
	}

	total := decimal.Zero
	billable := 0
	for _, d := range distributions {
		if d.Status == distributiondomain.StatusCancelled {
			continue
		}
		total = total.Add(d.CalculatedAmount)
		billable++
	}
	if billable == 0 {
		return billedPayout{}, invoicedomain.ErrNothingToInvoice
	}
	return billedPayout{
		recipientType: invoicedomain.PayoutTypePayout,
		recipientID:   payout.PolicyID,
		recipientName: fmt.Sprintf("%s policy payout", payout.PolicyType),
		amount:        total,
	}, nil
}

func (s *Service) recipientName(ctx context.Context, tx *gorm.DB, distribution *distributiondomain.PayoutDistribution) (string, error) {
	if distribution.RecipientType == distributiondomain.RecipientTypeCompanyExpense {
		return "Company Expense Reserve", nil
	}
	party, err := s.partyRepo.FindByID(ctx, tx, distribution.RecipientID)
	if err != nil {
		return "", err
	}
	if party == nil {
		return "", customerdomain.ErrPartyNotFound
	}
	return party.Name, nil
}

func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
