package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
)

type createCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	customer, err := s.customerSvc.CreateCustomer(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, customer)
}

func (s *Server) GetCustomer(c *gin.Context) {
	customer, err := s.customerSvc.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, customer)
}

func (s *Server) ListCustomers(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.customerSvc.ListCustomers(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Items, &resp.PageInfo)
}

type createPartyRequest struct {
	Role        string `json:"role"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	PAN         string `json:"pan"`
	BankAccount string `json:"bank_account"`
	ParentID    string `json:"parent_id"`
}

func (s *Server) CreateParty(c *gin.Context) {
	var req createPartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	party, err := s.customerSvc.CreateParty(c.Request.Context(), customerdomain.CreatePartyRequest{
		Role:        customerdomain.Role(strings.TrimSpace(req.Role)),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		PAN:         strings.TrimSpace(req.PAN),
		BankAccount: strings.TrimSpace(req.BankAccount),
		ParentID:    strings.TrimSpace(req.ParentID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, party)
}

func (s *Server) GetParty(c *gin.Context) {
	party, err := s.customerSvc.GetParty(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, party)
}

func (s *Server) ListParties(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.customerSvc.ListParties(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Items, &resp.PageInfo)
}
