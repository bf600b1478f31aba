package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/policywaylabs/policyway/internal/invoice/domain"
	"github.com/policywaylabs/policyway/pkg/db/pagination"
)

type generateInvoiceRequest struct {
	PayoutType string `json:"payout_type"`
	PayoutID   string `json:"payout_id"`
	DueDate    string `json:"due_date"`
	Notes      string `json:"notes"`
}

func (s *Server) GenerateInvoice(c *gin.Context) {
	var req generateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var dueDate time.Time
	if trimmed := strings.TrimSpace(req.DueDate); trimmed != "" {
		parsed, err := time.Parse("2006-01-02", trimmed)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		dueDate = parsed
	}

	payoutType := strings.TrimSpace(req.PayoutType)
	if payoutType == "" {
		payoutType = invoicedomain.PayoutTypeDistribution
	}

	invoice, err := s.invoiceSvc.Generate(c.Request.Context(), invoicedomain.GenerateRequest{
		PayoutType:  payoutType,
		PayoutID:    strings.TrimSpace(req.PayoutID),
		DueDate:     dueDate,
		Notes:       strings.TrimSpace(req.Notes),
		PerformedBy: performedBy(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, invoice)
}

func (s *Server) GetInvoice(c *gin.Context) {
	invoice, err := s.invoiceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, invoice)
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.Status(strings.TrimSpace(query.Status)), query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Items, &resp.PageInfo)
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	invoice, err := s.invoiceSvc.MarkPaid(c.Request.Context(), c.Param("id"), performedBy(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, invoice)
}

func (s *Server) InvoicePDF(c *gin.Context) {
	invoice, err := s.invoiceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.writeInvoicePDF(c, invoice)
}

// SharedInvoice serves the public share-link view keyed only by token.
func (s *Server) SharedInvoice(c *gin.Context) {
	invoice, err := s.invoiceSvc.GetByShareToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, invoice)
}

func (s *Server) SharedInvoicePDF(c *gin.Context) {
	invoice, err := s.invoiceSvc.GetByShareToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.writeInvoicePDF(c, invoice)
}

func (s *Server) writeInvoicePDF(c *gin.Context, invoice *invoicedomain.Invoice) {
	pdf, err := s.invoiceSvc.RenderPDF(c.Request.Context(), invoice)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+invoice.InvoiceNumber+".pdf\"")
	c.Data(http.StatusOK, "application/pdf", pdf)
}
