// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"trading-signal-subscription/internal/domain/model"
	"trading-signal-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase serves the admin dashboard counters and the TradingView
// access export.
type StatsUseCase interface {
	Dashboard(ctx context.Context, now time.Time) (*model.DashboardStats, error)
	ExportActiveUsernames(ctx context.Context) ([]model.ActiveUsername, error)
}

type statsUC struct {
	accounts repository.AccountRepository
	subs     repository.SubscriptionRepository
	claims   repository.PaymentClaimRepository
	log      *zerolog.Logger
}

func NewStatsUseCase(accounts repository.AccountRepository, subs repository.SubscriptionRepository, claims repository.PaymentClaimRepository, logger *zerolog.Logger) *statsUC {
	l := logger.With().Str("component", "StatsUC").Logger()
	return &statsUC{accounts: accounts, subs: subs, claims: claims, log: &l}
}

func (s *statsUC) Dashboard(ctx context.Context, now time.Time) (*model.DashboardStats, error) {
	users, err := s.accounts.CountAccounts(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	active, err := s.subs.CountByStatus(ctx, repository.NoTX, model.SubscriptionStatusActive)
	if err != nil {
		return nil, err
	}
	trial, err := s.subs.CountByStatus(ctx, repository.NoTX, model.SubscriptionStatusTrial)
	if err != nil {
		return nil, err
	}
	pendingClaims, err := s.claims.CountByStatus(ctx, repository.NoTX, model.ClaimStatusPending)
	if err != nil {
		return nil, err
	}
	pendingApprovals, err := s.subs.CountByStatus(ctx, repository.NoTX, model.SubscriptionStatusPendingApproval)
	if err != nil {
		return nil, err
	}
	total, err := s.claims.SumApproved(ctx, repository.NoTX, time.Time{})
	if err != nil {
		return nil, err
	}
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	month, err := s.claims.SumApproved(ctx, repository.NoTX, firstOfMonth)
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		TotalUsers:          users,
		ActiveSubscriptions: active,
		TrialUsers:          trial,
		PendingClaims:       pendingClaims,
		PendingApprovals:    pendingApprovals,
		RevenueTotalCents:   total,
		RevenueMonthCents:   month,
	}, nil
}

func (s *statsUC) ExportActiveUsernames(ctx context.Context) ([]model.ActiveUsername, error) {
	return s.subs.ActiveUsernames(ctx, repository.NoTX)
}
