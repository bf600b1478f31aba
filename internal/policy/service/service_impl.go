package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/policywaylabs/policyway/internal/clock"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	validate *validator.Validate
	repo     policydomain.Repository
	locks    policydomain.LockChecker
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  policydomain.Repository
	Locks policydomain.LockChecker `optional:"true"`
}

func NewService(p ServiceParam) policydomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("policy.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		validate: validator.New(),
		repo:     p.Repo,
		locks:    p.Locks,
	}
}

func (s *Service) Create(ctx context.Context, req policydomain.CreateRequest) (*policydomain.Policy, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if !req.PolicyType.Valid() {
		return nil, policydomain.ErrInvalidPolicyType
	}
	if _, err := req.PaymentFrequency.Period(); err != nil {
		return nil, err
	}

	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		return nil, customerdomain.ErrCustomerNotFound
	}
	startDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.StartDate))
	if err != nil {
		return nil, err
	}

	percents, partyIDs, err := resolveShareInputs(req.Shares)
	if err != nil {
		return nil, err
	}

	breakdown, err := policydomain.Compute(req.TotalPremium, percents, req.CompanyExpensesPercentage)
	if err != nil {
		return nil, err
	}

	policy := &policydomain.Policy{
		ID:                        s.genID.Generate(),
		CustomerID:                customerID,
		PolicyType:                req.PolicyType,
		PolicyNumber:              strings.TrimSpace(req.PolicyNumber),
		InsurerName:               strings.TrimSpace(req.InsurerName),
		TotalPremium:              req.TotalPremium,
		NetPremium:                req.NetPremium,
		GSTPercentage:             req.GSTPercentage,
		CompanyExpensesPercentage: req.CompanyExpensesPercentage,
		CompanyExpensesAmount:     breakdown.CompanyExpensesAmount,
		ProfitPercentage:          breakdown.ProfitPercentage,
		ProfitAmount:              breakdown.ProfitAmount,
		PaymentFrequency:          req.PaymentFrequency,
		StartDate:                 startDate,
	}

	shares := buildShares(s.genID, policy.ID, req.Shares, partyIDs, breakdown)

	termYears := req.TermYears
	if termYears <= 0 {
		termYears = 1
	}
	installments, err := buildSchedule(s.genID, policy.ID, req.TotalPremium, req.PaymentFrequency, startDate, termYears)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, policy); err != nil {
			return err
		}
		if err := s.repo.InsertShares(ctx, tx, shares); err != nil {
			return err
		}
		return s.repo.InsertInstallments(ctx, tx, installments)
	})
	if err != nil {
		return nil, err
	}

	policy.Shares = shares
	s.log.Info("policy created",
		zap.String("policy_id", policy.ID.String()),
		zap.String("policy_number", policy.PolicyNumber),
		zap.String("policy_type", string(policy.PolicyType)),
	)
	return policy, nil
}

func (s *Service) Get(ctx context.Context, id string) (*policydomain.Policy, error) {
	policyID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, policydomain.ErrPolicyNotFound
	}
	policy, err := s.repo.FindByID(ctx, s.db, policyID)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, policydomain.ErrPolicyNotFound
	}
	return policy, nil
}

func (s *Service) List(ctx context.Context, req policydomain.ListRequest) (*policydomain.ListResponse, error) {
	filter := policydomain.ListFilter{PolicyType: req.PolicyType}
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err := snowflake.ParseString(req.CustomerID)
		if err != nil {
			return nil, customerdomain.ErrCustomerNotFound
		}
		filter.CustomerID = &customerID
	}

	policies, err := s.repo.List(ctx, s.db, filter, req.Page)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	return &policydomain.ListResponse{
		Policies: policies,
		PageInfo: pagination.PageInfo{
			NextPageToken: req.Page.NextToken(len(policies), total),
			TotalCount:    total,
		},
	}, nil
}

// Update recomputes commission terms. Policies already referenced by a
// commission receipt are locked: edits would silently rewrite history.
func (s *Service) Update(ctx context.Context, id string, req policydomain.UpdateRequest) (*policydomain.Policy, error) {
	policy, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.locks != nil {
		locked, err := s.locks.IsPolicyLocked(ctx, policy.PolicyType, policy.ID)
		if err != nil {
			return nil, err
		}
		if locked {
			return nil, policydomain.ErrPolicyLocked
		}
	}

	if req.TotalPremium != nil {
		policy.TotalPremium = *req.TotalPremium
	}
	if req.NetPremium != nil {
		policy.NetPremium = *req.NetPremium
	}
	if req.GSTPercentage != nil {
		policy.GSTPercentage = *req.GSTPercentage
	}
	if req.CompanyExpensesPercentage != nil {
		policy.CompanyExpensesPercentage = *req.CompanyExpensesPercentage
	}

	shareInputs := req.Shares
	if shareInputs == nil {
		shareInputs = shareInputsFromPolicy(policy)
	}

	percents, partyIDs, err := resolveShareInputs(shareInputs)
	if err != nil {
		return nil, err
	}
	breakdown, err := policydomain.Compute(policy.TotalPremium, percents, policy.CompanyExpensesPercentage)
	if err != nil {
		return nil, err
	}

	policy.CompanyExpensesAmount = breakdown.CompanyExpensesAmount
	policy.ProfitPercentage = breakdown.ProfitPercentage
	policy.ProfitAmount = breakdown.ProfitAmount

	shares := buildShares(s.genID, policy.ID, shareInputs, partyIDs, breakdown)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, policy); err != nil {
			return err
		}
		return s.repo.ReplaceShares(ctx, tx, policy.ID, shares)
	})
	if err != nil {
		return nil, err
	}

	policy.Shares = shares
	return policy, nil
}

func (s *Service) ListInstallments(ctx context.Context, policyID string) ([]policydomain.Installment, error) {
	id, err := snowflake.ParseString(policyID)
	if err != nil {
		return nil, policydomain.ErrPolicyNotFound
	}
	return s.repo.ListInstallments(ctx, s.db, id)
}

func (s *Service) MarkInstallmentPaid(ctx context.Context, policyID, installmentID string) error {
	if _, err := s.Get(ctx, policyID); err != nil {
		return err
	}
	id, err := snowflake.ParseString(installmentID)
	if err != nil {
		return policydomain.ErrPolicyNotFound
	}
	return s.repo.MarkInstallmentPaid(ctx, s.db, id)
}

func resolveShareInputs(inputs []policydomain.ShareInput) (map[customerdomain.Role]policydomain.RolePercent, map[customerdomain.Role]snowflake.ID, error) {
	percents := make(map[customerdomain.Role]policydomain.RolePercent, len(inputs))
	partyIDs := make(map[customerdomain.Role]snowflake.ID, len(inputs))
	for _, input := range inputs {
		if !input.Role.Valid() {
			return nil, nil, customerdomain.ErrInvalidRole
		}
		partyID, err := snowflake.ParseString(input.PartyID)
		if err != nil {
			return nil, nil, customerdomain.ErrPartyNotFound
		}
		percents[input.Role] = policydomain.RolePercent{
			Commission: input.CommissionPercentage,
			TDS:        input.TDSPercentage,
		}
		partyIDs[input.Role] = partyID
	}
	return percents, partyIDs, nil
}

func buildShares(
	genID *snowflake.Node,
	policyID snowflake.ID,
	inputs []policydomain.ShareInput,
	partyIDs map[customerdomain.Role]snowflake.ID,
	breakdown *policydomain.Breakdown,
) []policydomain.RoleShare {
	shares := make([]policydomain.RoleShare, 0, len(inputs))
	for _, input := range inputs {
		amounts := breakdown.Roles[input.Role]
		shares = append(shares, policydomain.RoleShare{
			ID:                   genID.Generate(),
			PolicyID:             policyID,
			Role:                 input.Role,
			PartyID:              partyIDs[input.Role],
			CommissionPercentage: input.CommissionPercentage,
			CommissionAmount:     amounts.CommissionAmount,
			TDSPercentage:        input.TDSPercentage,
			TDSAmount:            amounts.TDSAmount,
			AfterTDSValue:        amounts.AfterTDSValue,
		})
	}
	return shares
}

// buildSchedule splits the premium evenly over the term; the final installment
// absorbs the rounding residual so the schedule sums exactly to the premium.
func buildSchedule(
	genID *snowflake.Node,
	policyID snowflake.ID,
	totalPremium decimal.Decimal,
	frequency policydomain.PaymentFrequency,
	startDate time.Time,
	termYears int,
) ([]policydomain.Installment, error) {
	perYear, err := frequency.InstallmentsPerYear()
	if err != nil {
		return nil, err
	}
	count := perYear * termYears
	if count == 0 {
		return nil, policydomain.ErrInvalidFrequency
	}

	each := totalPremium.Div(decimal.NewFromInt(int64(count))).Round(2)
	installments := make([]policydomain.Installment, 0, count)
	due := startDate
	allocated := decimal.Zero
	for i := 1; i <= count; i++ {
		amount := each
		if i == count {
			amount = totalPremium.Sub(allocated)
		}
		allocated = allocated.Add(amount)

		installments = append(installments, policydomain.Installment{
			ID:       genID.Generate(),
			PolicyID: policyID,
			Sequence: i,
			DueDate:  due,
			Amount:   amount,
		})
		due, err = frequency.NextDueDate(due)
		if err != nil {
			return nil, err
		}
	}
	return installments, nil
}

func shareInputsFromPolicy(policy *policydomain.Policy) []policydomain.ShareInput {
	inputs := make([]policydomain.ShareInput, 0, len(policy.Shares))
	for _, share := range policy.Shares {
		inputs = append(inputs, policydomain.ShareInput{
			Role:                 share.Role,
			PartyID:              share.PartyID.String(),
			CommissionPercentage: share.CommissionPercentage,
			TDSPercentage:        share.TDSPercentage,
		})
	}
	return inputs
}
