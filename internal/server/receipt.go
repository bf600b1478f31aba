package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	receiptdomain "github.com/policywaylabs/policyway/internal/receipt/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type recordReceiptRequest struct {
	PolicyType                  string          `json:"policy_type"`
	PolicyID                    string          `json:"policy_id"`
	TotalCommissionReceived     decimal.Decimal `json:"total_commission_received"`
	ReceivedDate                string          `json:"received_date"`
	CompanyCommissionPercentage decimal.Decimal `json:"company_commission_percentage"`
	AutoDistribute              bool            `json:"auto_distribute"`
}

func (s *Server) RecordReceipt(c *gin.Context) {
	var req recordReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	receipt, err := s.receiptSvc.RecordReceipt(c.Request.Context(), receiptdomain.RecordReceiptRequest{
		PolicyType:                  policydomain.PolicyType(strings.TrimSpace(req.PolicyType)),
		PolicyID:                    strings.TrimSpace(req.PolicyID),
		TotalCommissionReceived:     req.TotalCommissionReceived,
		ReceivedDate:                strings.TrimSpace(req.ReceivedDate),
		CompanyCommissionPercentage: req.CompanyCommissionPercentage,
		AutoDistribute:              req.AutoDistribute,
		PerformedBy:                 performedBy(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, receipt)
}

func (s *Server) GetReceipt(c *gin.Context) {
	receipt, err := s.receiptSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, receipt)
}

func (s *Server) ListReceipts(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.receiptSvc.List(c.Request.Context(), receiptdomain.ListRequest{Page: page})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Receipts, &resp.PageInfo)
}

func (s *Server) DistributeReceipt(c *gin.Context) {
	distributions, err := s.distributionSvc.Distribute(c.Request.Context(), c.Param("id"), performedBy(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, distributions)
}

func (s *Server) ListDistributions(c *gin.Context) {
	distributions, err := s.distributionSvc.ListByReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, distributions)
}
