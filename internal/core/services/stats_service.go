package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/adapters/persistence/repositories"
	"swearjar-backend/internal/core/domain"
)

// StatsService provides read-side statistics views. The statistics
// themselves are maintained by the ledger's atomic apply path; this
// service only reads and combines them.
type StatsService struct {
	jarRepo         repositories.JarRepository
	membershipRepo  repositories.MembershipRepository
	transactionRepo repositories.TransactionRepository
	permissions     *PermissionService
}

// NewStatsService creates a new stats service
func NewStatsService(
	jarRepo repositories.JarRepository,
	membershipRepo repositories.MembershipRepository,
	transactionRepo repositories.TransactionRepository,
	permissions *PermissionService,
) *StatsService {
	return &StatsService{
		jarRepo:         jarRepo,
		membershipRepo:  membershipRepo,
		transactionRepo: transactionRepo,
		permissions:     permissions,
	}
}

// JarSummary is the per-jar dashboard payload
type JarSummary struct {
	JarID            uint                  `json:"jar_id"`
	Name             string                `json:"name"`
	Currency         string                `json:"currency"`
	Balance          decimal.Decimal       `json:"balance"`
	Statistics       models.JarStatistics  `json:"statistics"`
	MemberCount      int                   `json:"member_count"`
	PendingCount     int                   `json:"pending_count"`
	PendingAmount    decimal.Decimal       `json:"pending_amount"`
	LastTransactions []*models.Transaction `json:"last_transactions"`
}

// JarSummary builds the dashboard view for one jar. Requires membership.
func (s *StatsService) JarSummary(ctx context.Context, actorID string, jarID uint) (*JarSummary, error) {
	jar, err := s.jarRepo.GetByID(ctx, jarID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapMember); err != nil {
		return nil, err
	}

	members, err := s.membershipRepo.ListByJar(ctx, jarID)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.transactionRepo.ListByJar(ctx, jarID, 0, 10)
	if err != nil {
		return nil, err
	}

	summary := &JarSummary{
		JarID:            jar.ID,
		Name:             jar.Name,
		Currency:         jar.Currency,
		Balance:          jar.Balance,
		Statistics:       jar.Statistics,
		MemberCount:      len(members),
		PendingAmount:    decimal.Zero,
		LastTransactions: recent,
	}
	for _, tx := range recent {
		if tx.IsPending() {
			summary.PendingCount++
			summary.PendingAmount = summary.PendingAmount.Add(tx.Amount)
		}
	}
	return summary, nil
}

// UserSummary aggregates jar balances for one user across their jars
type UserSummary struct {
	JarCount     int                        `json:"jar_count"`
	TotalByCurr  map[string]decimal.Decimal `json:"total_by_currency"`
	LastActivity *time.Time                 `json:"last_activity"`
}

// UserSummary builds the cross-jar view for the calling user
func (s *StatsService) UserSummary(ctx context.Context, userID string) (*UserSummary, error) {
	jars, _, err := s.jarRepo.ListByUser(ctx, userID, 0, 100)
	if err != nil {
		return nil, err
	}

	summary := &UserSummary{
		JarCount:    len(jars),
		TotalByCurr: make(map[string]decimal.Decimal),
	}
	for _, jar := range jars {
		total, ok := summary.TotalByCurr[jar.Currency]
		if !ok {
			total = decimal.Zero
		}
		summary.TotalByCurr[jar.Currency] = total.Add(jar.Balance)

		if jar.Statistics.LastActivity != nil {
			if summary.LastActivity == nil || jar.Statistics.LastActivity.After(*summary.LastActivity) {
				summary.LastActivity = jar.Statistics.LastActivity
			}
		}
	}
	return summary, nil
}
