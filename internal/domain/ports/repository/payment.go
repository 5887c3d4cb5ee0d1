package repository

import (
	"context"
	"time"

	"trading-signal-subscription/internal/domain/model"
)

// PaymentClaimRepository is the port for user-submitted payment proofs.
type PaymentClaimRepository interface {
	Save(ctx context.Context, tx Tx, c *model.PaymentClaim) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PaymentClaim, error)
	FindByTXID(ctx context.Context, tx Tx, txid string) (*model.PaymentClaim, error)
	ListPending(ctx context.Context, tx Tx) ([]*model.PaymentClaim, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.PaymentClaim, error)
	CountByStatus(ctx context.Context, tx Tx, status model.ClaimStatus) (int, error)

	// SumApproved totals approved claim amounts reviewed at or after `since`;
	// a zero time means all time.
	SumApproved(ctx context.Context, tx Tx, since time.Time) (int64, error)
}
