package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	distributiondomain "github.com/policywaylabs/policyway/internal/distribution/domain"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"github.com/shopspring/decimal"
)

type recordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Mode          string          `json:"mode"`
	TransactionID string          `json:"transaction_id"`
}

type cancelDistributionRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) GetDistribution(c *gin.Context) {
	distribution, err := s.distributionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, distribution)
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	distribution, err := s.distributionSvc.RecordPayment(c.Request.Context(), distributiondomain.RecordPaymentRequest{
		DistributionID: c.Param("id"),
		Amount:         req.Amount,
		Mode:           distributiondomain.PaymentMode(strings.TrimSpace(req.Mode)),
		TransactionID:  strings.TrimSpace(req.TransactionID),
		PerformedBy:    performedBy(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, distribution)
}

func (s *Server) ListPayments(c *gin.Context) {
	payments, err := s.distributionSvc.ListPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, payments)
}

func (s *Server) CancelDistribution(c *gin.Context) {
	var req cancelDistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	distribution, err := s.distributionSvc.Cancel(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.Reason), performedBy(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, distribution)
}

func (s *Server) GetPayout(c *gin.Context) {
	policyType := policydomain.PolicyType(c.Param("policyType"))
	if !policyType.Valid() {
		AbortWithError(c, policydomain.ErrInvalidPolicyType)
		return
	}

	payout, err := s.distributionSvc.GetPayout(c.Request.Context(), policyType, c.Param("policyId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, payout)
}
