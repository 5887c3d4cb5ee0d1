package repository

import (
	"context"
	"time"

	"trading-signal-subscription/internal/domain/model"
)

// SubscriptionRepository is the port for per-account subscription records.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)

	// ExpireOverdue moves every TRIAL/ACTIVE subscription whose end date has
	// passed to EXPIRED in one statement and returns the number of rows changed.
	ExpireOverdue(ctx context.Context, tx Tx, now time.Time) (int, error)

	// ListByStatus returns subscriptions in the given status, newest first.
	ListByStatus(ctx context.Context, tx Tx, status model.SubscriptionStatus) ([]*model.Subscription, error)
	CountByStatus(ctx context.Context, tx Tx, status model.SubscriptionStatus) (int, error)

	// ActiveUsernames returns the TradingView usernames of accounts whose
	// subscription is TRIAL or ACTIVE, ascending by username.
	ActiveUsernames(ctx context.Context, tx Tx) ([]model.ActiveUsername, error)
}
