package repository

import (
	"context"

	"trading-signal-subscription/internal/domain/model"
)

// AccountRepository is the port for registered accounts.
type AccountRepository interface {
	Save(ctx context.Context, tx Tx, a *model.Account) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Account, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.Account, error)
	FindByTradingViewUsername(ctx context.Context, tx Tx, username string) (*model.Account, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Account, error)
	CountAccounts(ctx context.Context, tx Tx) (int, error)
}
