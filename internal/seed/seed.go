// Package seed loads a small demo dataset for local development: one
// customer, one commission party per role, and a policy wired to them.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	demoCustomerEmail = "demo.customer@policyway.local"
	demoPolicyNumber  = "DEMO-HLT-0001"
)

type demoParty struct {
	role  customerdomain.Role
	name  string
	email string
	pct   int64
	tds   int64
}

var demoParties = []demoParty{
	{role: customerdomain.RoleMainAgent, name: "Demo Main Agent", email: "main.agent@policyway.local", pct: 10, tds: 5},
	{role: customerdomain.RoleSubAgent, name: "Demo Sub Agent", email: "sub.agent@policyway.local", pct: 2, tds: 5},
	{role: customerdomain.RoleDistributor, name: "Demo Distributor", email: "distributor@policyway.local", pct: 1, tds: 5},
	{role: customerdomain.RoleAmbassador, name: "Demo Ambassador", email: "ambassador@policyway.local", pct: 2, tds: 5},
}

// EnsureDemoData is idempotent; natural keys decide whether rows exist.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := ensureCustomerTx(ctx, tx, node)
		if err != nil {
			return err
		}
		parties, err := ensurePartiesTx(ctx, tx, node)
		if err != nil {
			return err
		}
		return ensurePolicyTx(ctx, tx, node, customer, parties)
	})
}

func ensureCustomerTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*customerdomain.Customer, error) {
	var existing customerdomain.Customer
	err := tx.WithContext(ctx).Where("email = ?", demoCustomerEmail).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer := &customerdomain.Customer{
		ID:    node.Generate(),
		Name:  "Demo Customer",
		Email: demoCustomerEmail,
		Phone: "+91-9000000000",
	}
	if err := tx.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func ensurePartiesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (map[customerdomain.Role]*customerdomain.Party, error) {
	parties := make(map[customerdomain.Role]*customerdomain.Party, len(demoParties))
	var mainAgentID *snowflake.ID

	for _, seed := range demoParties {
		var existing customerdomain.Party
		err := tx.WithContext(ctx).Where("email = ?", seed.email).First(&existing).Error
		if err == nil {
			parties[seed.role] = &existing
			if seed.role == customerdomain.RoleMainAgent {
				id := existing.ID
				mainAgentID = &id
			}
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		party := &customerdomain.Party{
			ID:    node.Generate(),
			Role:  seed.role,
			Name:  seed.name,
			Email: seed.email,
		}
		if seed.role == customerdomain.RoleSubAgent {
			party.ParentID = mainAgentID
		}
		if err := tx.WithContext(ctx).Create(party).Error; err != nil {
			return nil, err
		}
		parties[seed.role] = party
		if seed.role == customerdomain.RoleMainAgent {
			id := party.ID
			mainAgentID = &id
		}
	}
	return parties, nil
}

func ensurePolicyTx(
	ctx context.Context,
	tx *gorm.DB,
	node *snowflake.Node,
	customer *customerdomain.Customer,
	parties map[customerdomain.Role]*customerdomain.Party,
) error {
	var count int64
	err := tx.WithContext(ctx).Model(&policydomain.Policy{}).
		Where("policy_number = ?", demoPolicyNumber).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	premium := decimal.NewFromInt(25000)
	roles := make(map[customerdomain.Role]policydomain.RolePercent, len(demoParties))
	for _, seed := range demoParties {
		roles[seed.role] = policydomain.RolePercent{
			Commission: decimal.NewFromInt(seed.pct),
			TDS:        decimal.NewFromInt(seed.tds),
		}
	}

	companyPct := decimal.NewFromInt(2)
	breakdown, err := policydomain.Compute(premium, roles, companyPct)
	if err != nil {
		return err
	}

	policy := &policydomain.Policy{
		ID:                        node.Generate(),
		PolicyType:                policydomain.PolicyTypeHealth,
		PolicyNumber:              demoPolicyNumber,
		CustomerID:                customer.ID,
		TotalPremium:              premium,
		NetPremium:                premium,
		CompanyExpensesPercentage: companyPct,
		CompanyExpensesAmount:     breakdown.CompanyExpensesAmount,
		ProfitPercentage:          breakdown.ProfitPercentage,
		ProfitAmount:              breakdown.ProfitAmount,
		PaymentFrequency:          policydomain.FrequencyYearly,
		StartDate:                 time.Now().UTC(),
	}
	for _, seed := range demoParties {
		amounts := breakdown.Roles[seed.role]
		policy.Shares = append(policy.Shares, policydomain.RoleShare{
			ID:                   node.Generate(),
			PolicyID:             policy.ID,
			Role:                 seed.role,
			PartyID:              parties[seed.role].ID,
			CommissionPercentage: decimal.NewFromInt(seed.pct),
			CommissionAmount:     amounts.CommissionAmount,
			TDSPercentage:        decimal.NewFromInt(seed.tds),
			TDSAmount:            amounts.TDSAmount,
			AfterTDSValue:        amounts.AfterTDSValue,
		})
	}
	return tx.WithContext(ctx).Create(policy).Error
}
