// Package scheduler runs the background sweeps: distributing receipts that
// were recorded with auto-distribution deferred, and flipping pending
// invoices past their due date to overdue.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/policywaylabs/policyway/internal/clock"
	distributiondomain "github.com/policywaylabs/policyway/internal/distribution/domain"
	invoicedomain "github.com/policywaylabs/policyway/internal/invoice/domain"
	receiptdomain "github.com/policywaylabs/policyway/internal/receipt/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sweepInterval = time.Minute
	sweepBatch    = 50
	sweepActor    = "scheduler"
)

type Scheduler struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	receiptRepo receiptdomain.Repository
	distributor distributiondomain.Service
	invoices    invoicedomain.Service

	stop chan struct{}
	done chan struct{}
}

type Param struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	ReceiptRepo receiptdomain.Repository
	Distributor distributiondomain.Service
	Invoices    invoicedomain.Service
}

func New(p Param) *Scheduler {
	return &Scheduler{
		db:          p.DB,
		log:         p.Log.Named("scheduler"),
		clock:       p.Clock,
		receiptRepo: p.ReceiptRepo,
		distributor: p.Distributor,
		invoices:    p.Invoices,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// RunForever ticks until Shutdown. Job failures are logged and retried on
// the next tick; one bad receipt must not stall the sweep.
func (s *Scheduler) RunForever() {
	defer close(s.done)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), sweepInterval)
			s.runOnce(ctx)
			cancel()
		}
	}
}

func (s *Scheduler) Shutdown() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if err := s.AutoDistributeJob(ctx); err != nil {
		s.log.Error("auto distribution sweep failed", zap.Error(err))
	}
	if err := s.OverdueInvoicesJob(ctx); err != nil {
		s.log.Error("overdue invoice sweep failed", zap.Error(err))
	}
}

// AutoDistributeJob distributes receipts flagged for auto-distribution that
// have not been distributed yet.
func (s *Scheduler) AutoDistributeJob(ctx context.Context) error {
	receipts, err := s.receiptRepo.ListPendingAutoDistribution(ctx, s.db, sweepBatch)
	if err != nil {
		return err
	}

	for _, receipt := range receipts {
		if _, err := s.distributor.Distribute(ctx, receipt.ID.String(), sweepActor); err != nil {
			if errors.Is(err, distributiondomain.ErrAlreadyDistributed) {
				continue
			}
			s.log.Error("auto distribution failed",
				zap.String("receipt_id", receipt.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.log.Info("receipt auto distributed", zap.String("receipt_id", receipt.ID.String()))
	}
	return nil
}

// OverdueInvoicesJob marks pending invoices past due as overdue.
func (s *Scheduler) OverdueInvoicesJob(ctx context.Context) error {
	_, err := s.invoices.SweepOverdue(ctx)
	return err
}
