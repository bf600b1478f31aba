// Package server exposes the HTTP surface: the authenticated admin API and
// the public invoice share endpoints, each on its own listener.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/policywaylabs/policyway/internal/apikey/domain"
	auditdomain "github.com/policywaylabs/policyway/internal/audit/domain"
	"github.com/policywaylabs/policyway/internal/config"
	customerdomain "github.com/policywaylabs/policyway/internal/customer/domain"
	distributiondomain "github.com/policywaylabs/policyway/internal/distribution/domain"
	invoicedomain "github.com/policywaylabs/policyway/internal/invoice/domain"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	"github.com/policywaylabs/policyway/internal/ratelimit"
	receiptdomain "github.com/policywaylabs/policyway/internal/receipt/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB

	customerSvc     customerdomain.Service
	policySvc       policydomain.Service
	receiptSvc      receiptdomain.Service
	distributionSvc distributiondomain.Service
	invoiceSvc      invoicedomain.Service
	auditSvc        auditdomain.Service
	auditExportSvc  auditdomain.ExportService
	apikeySvc       apikeydomain.Service
	limiter         *ratelimit.Limiter

	admin  *http.Server
	public *http.Server
}

type Param struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB

	CustomerSvc     customerdomain.Service
	PolicySvc       policydomain.Service
	ReceiptSvc      receiptdomain.Service
	DistributionSvc distributiondomain.Service
	InvoiceSvc      invoicedomain.Service
	AuditSvc        auditdomain.Service
	AuditExportSvc  auditdomain.ExportService
	APIKeySvc       apikeydomain.Service
	Limiter         *ratelimit.Limiter
}

func New(p Param) *Server {
	s := &Server{
		cfg:             p.Config,
		log:             p.Log.Named("server"),
		db:              p.DB,
		customerSvc:     p.CustomerSvc,
		policySvc:       p.PolicySvc,
		receiptSvc:      p.ReceiptSvc,
		distributionSvc: p.DistributionSvc,
		invoiceSvc:      p.InvoiceSvc,
		auditSvc:        p.AuditSvc,
		auditExportSvc:  p.AuditExportSvc,
		apikeySvc:       p.APIKeySvc,
		limiter:         p.Limiter,
	}

	s.admin = &http.Server{
		Addr:         p.Config.HTTP.Addr,
		Handler:      s.adminRouter(),
		ReadTimeout:  time.Duration(p.Config.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(p.Config.HTTP.WriteTimeout) * time.Second,
	}
	s.public = &http.Server{
		Addr:         p.Config.HTTP.PublicAddr,
		Handler:      s.publicRouter(),
		ReadTimeout:  time.Duration(p.Config.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(p.Config.HTTP.WriteTimeout) * time.Second,
	}
	return s
}

func (s *Server) adminRouter() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.Healthz)
	if s.cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api/v1")
	api.Use(s.APIKeyRequired())
	{
		api.POST("/customers", s.CreateCustomer)
		api.GET("/customers", s.ListCustomers)
		api.GET("/customers/:id", s.GetCustomer)

		api.POST("/parties", s.CreateParty)
		api.GET("/parties", s.ListParties)
		api.GET("/parties/:id", s.GetParty)

		api.POST("/policies", s.CreatePolicy)
		api.GET("/policies", s.ListPolicies)
		api.GET("/policies/:id", s.GetPolicy)
		api.PATCH("/policies/:id", s.UpdatePolicy)
		api.GET("/policies/:id/installments", s.ListInstallments)
		api.POST("/policies/:id/installments/:installmentId/pay", s.MarkInstallmentPaid)

		api.POST("/receipts", s.RecordReceipt)
		api.GET("/receipts", s.ListReceipts)
		api.GET("/receipts/:id", s.GetReceipt)
		api.POST("/receipts/:id/distribute", s.DistributeReceipt)
		api.GET("/receipts/:id/distributions", s.ListDistributions)

		api.GET("/distributions/:id", s.GetDistribution)
		api.POST("/distributions/:id/payments", s.RecordPayment)
		api.GET("/distributions/:id/payments", s.ListPayments)
		api.POST("/distributions/:id/cancel", s.CancelDistribution)

		api.GET("/payouts/:policyType/:policyId", s.GetPayout)

		api.POST("/invoices", s.GenerateInvoice)
		api.GET("/invoices", s.ListInvoices)
		api.GET("/invoices/:id", s.GetInvoice)
		api.POST("/invoices/:id/pay", s.MarkInvoicePaid)
		api.GET("/invoices/:id/pdf", s.InvoicePDF)

		api.GET("/audit/export", s.ExportAuditLogs)
		api.GET("/audit/logs/:auditableType/:auditableId", s.ListAuditLogs)
	}
	return r
}

func (s *Server) publicRouter() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.Healthz)

	share := r.Group("/share")
	share.Use(s.PublicRateLimit())
	{
		share.GET("/invoices/:token", s.SharedInvoice)
		share.GET("/invoices/:token/pdf", s.SharedInvoicePDF)
	}
	return r
}

func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Start brings both listeners up; Stop drains them.
func (s *Server) Start() {
	go func() {
		s.log.Info("admin api listening", zap.String("addr", s.admin.Addr))
		if err := s.admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("admin api server stopped", zap.Error(err))
		}
	}()
	go func() {
		s.log.Info("public share api listening", zap.String("addr", s.public.Addr))
		if err := s.public.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("public share server stopped", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	adminErr := s.admin.Shutdown(ctx)
	publicErr := s.public.Shutdown(ctx)
	if adminErr != nil {
		return adminErr
	}
	return publicErr
}
