package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/adapters/persistence/repositories"
)

// SweepService cancels pending transactions that have sat unresolved
// past the configured age. The ledger core imposes no timeout of its
// own; this is the operational sweep layered on top of it.
type SweepService struct {
	transactionRepo repositories.TransactionRepository
	ledger          repositories.LedgerRepository
	maxAge          time.Duration
	cron            *cron.Cron
}

// NewSweepService creates a new sweep service
func NewSweepService(
	transactionRepo repositories.TransactionRepository,
	ledger repositories.LedgerRepository,
	maxAge time.Duration,
) *SweepService {
	return &SweepService{
		transactionRepo: transactionRepo,
		ledger:          ledger,
		maxAge:          maxAge,
		cron:            cron.New(),
	}
}

// Start schedules the hourly sweep
func (s *SweepService) Start() {
	s.cron.AddFunc("@hourly", s.SweepOnce)
	s.cron.Start()
	log.Printf("🚀 SweepService started (max pending age: %s)", s.maxAge)
}

// Stop stops the scheduler
func (s *SweepService) Stop() {
	s.cron.Stop()
	log.Println("🛑 SweepService stopped")
}

// SweepOnce cancels all stale pending transactions. Each cancellation
// goes through the ledger transition, so a transaction resolved
// concurrently (approved or settled) is skipped, not clobbered.
func (s *SweepService) SweepOnce() {
	ctx := context.Background()
	cutoff := time.Now().Add(-s.maxAge)

	stale, err := s.transactionRepo.ListStalePending(ctx, cutoff)
	if err != nil {
		log.Printf("❌ Sweep query error: %v", err)
		return
	}

	for _, tx := range stale {
		_, _, err := s.ledger.Transition(ctx, tx.ID, models.TxStatusCancelled, repositories.TransitionOpts{})
		if err != nil {
			log.Printf("⚠️ Sweep skip transaction %d: %v", tx.ID, err)
			continue
		}
		log.Printf("🧹 Cancelled stale pending transaction %d (%s)", tx.ID, tx.Reference)
	}
}
