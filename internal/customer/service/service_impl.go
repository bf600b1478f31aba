package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	validate  *validator.Validate
	repo      customerdomain.Repository
	partyRepo customerdomain.PartyRepository
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      customerdomain.Repository
	PartyRepo customerdomain.PartyRepository
}

func NewService(p ServiceParam) customerdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("customer.service"),
		genID:     p.GenID,
		validate:  validator.New(),
		repo:      p.Repo,
		partyRepo: p.PartyRepo,
	}
}

func (s *Service) CreateCustomer(ctx context.Context, req customerdomain.CreateCustomerRequest) (*customerdomain.Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	customer := &customerdomain.Customer{
		ID:      s.genID.Generate(),
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}
	if err := s.repo.Insert(ctx, s.db, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*customerdomain.Customer, error) {
	customerID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, customerdomain.ErrCustomerNotFound
	}
	customer, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, customerdomain.ErrCustomerNotFound
	}
	return customer, nil
}

func (s *Service) ListCustomers(ctx context.Context, page pagination.Pagination) (*customerdomain.ListResponse[customerdomain.Customer], error) {
	customers, err := s.repo.List(ctx, s.db, page)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return &customerdomain.ListResponse[customerdomain.Customer]{
		Items: customers,
		PageInfo: pagination.PageInfo{
			NextPageToken: page.NextToken(len(customers), total),
			TotalCount:    total,
		},
	}, nil
}

func (s *Service) CreateParty(ctx context.Context, req customerdomain.CreatePartyRequest) (*customerdomain.Party, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, customerdomain.ErrInvalidRole
	}

	party := &customerdomain.Party{
		ID:          s.genID.Generate(),
		Role:        req.Role,
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		PAN:         strings.ToUpper(strings.TrimSpace(req.PAN)),
		BankAccount: strings.TrimSpace(req.BankAccount),
		Active:      true,
	}

	if strings.TrimSpace(req.ParentID) != "" {
		parentID, err := snowflake.ParseString(req.ParentID)
		if err != nil {
			return nil, customerdomain.ErrInvalidParent
		}
		parent, err := s.partyRepo.FindByID(ctx, s.db, parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.Role != customerdomain.RoleMainAgent {
			return nil, customerdomain.ErrInvalidParent
		}
		party.ParentID = &parentID
	}

	if err := s.partyRepo.Insert(ctx, s.db, party); err != nil {
		return nil, err
	}
	return party, nil
}

func (s *Service) GetParty(ctx context.Context, id string) (*customerdomain.Party, error) {
	partyID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, customerdomain.ErrPartyNotFound
	}
	party, err := s.partyRepo.FindByID(ctx, s.db, partyID)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, customerdomain.ErrPartyNotFound
	}
	return party, nil
}

func (s *Service) ListParties(ctx context.Context, page pagination.Pagination) (*customerdomain.ListResponse[customerdomain.Party], error) {
	parties, err := s.partyRepo.List(ctx, s.db, page)
	if err != nil {
		return nil, err
	}
	total, err := s.partyRepo.Count(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return &customerdomain.ListResponse[customerdomain.Party]{
		Items: parties,
		PageInfo: pagination.PageInfo{
			NextPageToken: page.NextToken(len(parties), total),
			TotalCount:    total,
		},
	}, nil
}
