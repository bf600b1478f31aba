package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	auditdomain "github.com/policywaylabs/policyway/internal/audit/domain"
	"github.com/policywaylabs/policyway/internal/clock"
	distributiondomain "github.com/policywaylabs/policyway/internal/distribution/domain"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	receiptdomain "github.com/policywaylabs/policyway/internal/receipt/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	validate    *validator.Validate
	repo        receiptdomain.Repository
	policyRepo  policydomain.Repository
	distributor distributiondomain.Service
	auditSvc    auditdomain.Service
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        receiptdomain.Repository
	PolicyRepo  policydomain.Repository
	Distributor distributiondomain.Service
	AuditSvc    auditdomain.Service
}

func NewService(p ServiceParam) receiptdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("receipt.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		validate:    validator.New(),
		repo:        p.Repo,
		policyRepo:  p.PolicyRepo,
		distributor: p.Distributor,
		auditSvc:    p.AuditSvc,
	}
}

func (s *Service) RecordReceipt(ctx context.Context, req receiptdomain.RecordReceiptRequest) (*receiptdomain.CommissionReceipt, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if !req.PolicyType.Valid() {
		return nil, policydomain.ErrInvalidPolicyType
	}
	if !req.TotalCommissionReceived.IsPositive() {
		return nil, receiptdomain.ErrInvalidAmount
	}

	policyID, err := snowflake.ParseString(req.PolicyID)
	if err != nil {
		return nil, policydomain.ErrPolicyNotFound
	}
	receivedDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.ReceivedDate))
	if err != nil {
		return nil, err
	}

	policy, err := s.policyRepo.FindByID(ctx, s.db, policyID)
	if err != nil {
		return nil, err
	}
	if policy == nil || policy.PolicyType != req.PolicyType {
		return nil, policydomain.ErrPolicyNotFound
	}

	existing, err := s.repo.FindByPolicy(ctx, s.db, req.PolicyType, policyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, receiptdomain.ErrDuplicateReceipt
	}

	receipt := &receiptdomain.CommissionReceipt{
		ID:                          s.genID.Generate(),
		PolicyType:                  req.PolicyType,
		PolicyID:                    policyID,
		TotalCommissionReceived:     req.TotalCommissionReceived,
		ReceivedDate:                receivedDate,
		CompanyCommissionPercentage: req.CompanyCommissionPercentage,
		ReferenceKey:                uuid.NewString(),
		AutoDistribute:              req.AutoDistribute,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The unique (policy_type, policy_id) constraint is the real guard
		// against a concurrent duplicate; the read above only gives a clean
		// error on the common path.
		if err := s.repo.Insert(ctx, tx, receipt); err != nil {
			return err
		}

		if err := s.auditSvc.AppendTx(ctx, tx, "commission_receipt", receipt.ID, auditdomain.ActionCreated, map[string]any{
			"policy_type":     string(receipt.PolicyType),
			"policy_id":       receipt.PolicyID.String(),
			"amount_received": receipt.TotalCommissionReceived.String(),
			"received_date":   receipt.ReceivedDate.Format("2006-01-02"),
		}, req.PerformedBy); err != nil {
			return err
		}

		if req.AutoDistribute {
			if _, err := s.distributor.DistributeTx(ctx, tx, receipt.ID, req.PerformedBy); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.AutoDistribute {
		// Reload so the caller sees distributed_at set inside the transaction.
		fresh, err := s.repo.FindByID(ctx, s.db, receipt.ID)
		if err == nil && fresh != nil {
			receipt = fresh
		}
	}

	s.log.Info("commission receipt recorded",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("policy_id", receipt.PolicyID.String()),
		zap.Bool("auto_distribute", receipt.AutoDistribute),
	)
	return receipt, nil
}

func (s *Service) Get(ctx context.Context, id string) (*receiptdomain.CommissionReceipt, error) {
	receiptID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, receiptdomain.ErrReceiptNotFound
	}
	receipt, err := s.repo.FindByID(ctx, s.db, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, receiptdomain.ErrReceiptNotFound
	}
	return receipt, nil
}

func (s *Service) List(ctx context.Context, req receiptdomain.ListRequest) (*receiptdomain.ListResponse, error) {
	receipts, err := s.repo.List(ctx, s.db, req.Page)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return &receiptdomain.ListResponse{
		Receipts: receipts,
		PageInfo: pagination.PageInfo{
			NextPageToken: req.Page.NextToken(len(receipts), total),
			TotalCount:    total,
		},
	}, nil
}
