package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type shareInputRequest struct {
	Role                 string          `json:"role"`
	PartyID              string          `json:"party_id"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	TDSPercentage        decimal.Decimal `json:"tds_percentage"`
}

type createPolicyRequest struct {
	CustomerID                string              `json:"customer_id"`
	PolicyType                string              `json:"policy_type"`
	PolicyNumber              string              `json:"policy_number"`
	InsurerName               string              `json:"insurer_name"`
	TotalPremium              decimal.Decimal     `json:"total_premium"`
	NetPremium                decimal.Decimal     `json:"net_premium"`
	GSTPercentage             decimal.Decimal     `json:"gst_percentage"`
	CompanyExpensesPercentage decimal.Decimal     `json:"company_expenses_percentage"`
	PaymentFrequency          string              `json:"payment_frequency"`
	StartDate                 string              `json:"start_date"`
	TermYears                 int                 `json:"term_years"`
	Shares                    []shareInputRequest `json:"shares"`
}

type updatePolicyRequest struct {
	TotalPremium              *decimal.Decimal    `json:"total_premium,omitempty"`
	NetPremium                *decimal.Decimal    `json:"net_premium,omitempty"`
	GSTPercentage             *decimal.Decimal    `json:"gst_percentage,omitempty"`
	CompanyExpensesPercentage *decimal.Decimal    `json:"company_expenses_percentage,omitempty"`
	Shares                    []shareInputRequest `json:"shares,omitempty"`
}

func shareInputs(reqs []shareInputRequest) []policydomain.ShareInput {
	inputs := make([]policydomain.ShareInput, 0, len(reqs))
	for _, r := range reqs {
		inputs = append(inputs, policydomain.ShareInput{
			Role:                 customerdomain.Role(strings.TrimSpace(r.Role)),
			PartyID:              strings.TrimSpace(r.PartyID),
			CommissionPercentage: r.CommissionPercentage,
			TDSPercentage:        r.TDSPercentage,
		})
	}
	return inputs
}

func (s *Server) CreatePolicy(c *gin.Context) {
	var req createPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	policy, err := s.policySvc.Create(c.Request.Context(), policydomain.CreateRequest{
		CustomerID:                strings.TrimSpace(req.CustomerID),
		PolicyType:                policydomain.PolicyType(strings.TrimSpace(req.PolicyType)),
		PolicyNumber:              strings.TrimSpace(req.PolicyNumber),
		InsurerName:               strings.TrimSpace(req.InsurerName),
		TotalPremium:              req.TotalPremium,
		NetPremium:                req.NetPremium,
		GSTPercentage:             req.GSTPercentage,
		CompanyExpensesPercentage: req.CompanyExpensesPercentage,
		PaymentFrequency:          policydomain.PaymentFrequency(strings.TrimSpace(req.PaymentFrequency)),
		StartDate:                 strings.TrimSpace(req.StartDate),
		TermYears:                 req.TermYears,
		Shares:                    shareInputs(req.Shares),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, policy)
}

func (s *Server) GetPolicy(c *gin.Context) {
	policy, err := s.policySvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, policy)
}

func (s *Server) ListPolicies(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
		PolicyType string `form:"policy_type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.policySvc.List(c.Request.Context(), policydomain.ListRequest{
		CustomerID: strings.TrimSpace(query.CustomerID),
		PolicyType: policydomain.PolicyType(strings.TrimSpace(query.PolicyType)),
		Page:       query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Policies, &resp.PageInfo)
}

func (s *Server) UpdatePolicy(c *gin.Context) {
	var req updatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	update := policydomain.UpdateRequest{
		TotalPremium:              req.TotalPremium,
		NetPremium:                req.NetPremium,
		GSTPercentage:             req.GSTPercentage,
		CompanyExpensesPercentage: req.CompanyExpensesPercentage,
	}
	if req.Shares != nil {
		update.Shares = shareInputs(req.Shares)
	}

	policy, err := s.policySvc.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, policy)
}

func (s *Server) ListInstallments(c *gin.Context) {
	installments, err := s.policySvc.ListInstallments(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, installments)
}

func (s *Server) MarkInstallmentPaid(c *gin.Context) {
	err := s.policySvc.MarkInstallmentPaid(c.Request.Context(), c.Param("id"), c.Param("installmentId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"paid": true})
}
