// File: internal/usecase/account_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"trading-signal-subscription/internal/domain"
	"trading-signal-subscription/internal/domain/model"
	"trading-signal-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ AccountUseCase = (*accountUC)(nil)

const bcryptCost = 12

// AccountUseCase covers registration, credential verification and the
// emergency suspend toggle. Session issuance lives in the web layer.
type AccountUseCase interface {
	// Register creates the account and its PENDING_APPROVAL subscription in
	// one transaction. Email and TradingView username are unique.
	Register(ctx context.Context, email, password, name, tradingViewUsername string, now time.Time) (*model.Account, error)
	// Authenticate verifies credentials and returns the account.
	Authenticate(ctx context.Context, email, password string, now time.Time) (*model.Account, error)
	Get(ctx context.Context, userID string) (*model.Account, error)
	List(ctx context.Context, offset, limit int) ([]*model.Account, error)
	// SetSuspended flips the account's active flag. Suspension also expires
	// the subscription so access drops immediately.
	SetSuspended(ctx context.Context, userID string, suspended bool, now time.Time) error
}

type accountUC struct {
	accounts repository.AccountRepository
	subs     repository.SubscriptionRepository
	txm      repository.TransactionManager
	log      *zerolog.Logger
}

func NewAccountUseCase(accounts repository.AccountRepository, subs repository.SubscriptionRepository, txm repository.TransactionManager, logger *zerolog.Logger) *accountUC {
	l := logger.With().Str("component", "AccountUC").Logger()
	return &accountUC{accounts: accounts, subs: subs, txm: txm, log: &l}
}

func (u *accountUC) Register(ctx context.Context, email, password, name, tradingViewUsername string, now time.Time) (*model.Account, error) {
	if email == "" || password == "" || tradingViewUsername == "" {
		return nil, domain.ErrInvalidArgument
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	account, err := model.NewAccount(email, string(hash), name, tradingViewUsername, now)
	if err != nil {
		return nil, err
	}

	err = u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if existing, err := u.accounts.FindByEmail(ctx, tx, email); err == nil && existing != nil {
			return domain.ErrAlreadyExists
		} else if err != nil && err != domain.ErrNotFound {
			return err
		}
		if existing, err := u.accounts.FindByTradingViewUsername(ctx, tx, tradingViewUsername); err == nil && existing != nil {
			return domain.ErrAlreadyExists
		} else if err != nil && err != domain.ErrNotFound {
			return err
		}
		if err := u.accounts.Save(ctx, tx, account); err != nil {
			return err
		}
		return u.subs.Save(ctx, tx, model.NewSubscription(account.ID, now))
	})
	if err != nil {
		return nil, err
	}

	u.log.Info().Str("user_id", account.ID).Msg("account registered")
	return account, nil
}

func (u *accountUC) Authenticate(ctx context.Context, email, password string, now time.Time) (*model.Account, error) {
	account, err := u.accounts.FindByEmail(ctx, repository.NoTX, email)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, domain.ErrAccountSuspended
	}
	account.LastLoginAt = &now
	if err := u.accounts.Save(ctx, repository.NoTX, account); err != nil {
		u.log.Warn().Err(err).Str("user_id", account.ID).Msg("failed to record last login")
	}
	return account, nil
}

func (u *accountUC) Get(ctx context.Context, userID string) (*model.Account, error) {
	return u.accounts.FindByID(ctx, repository.NoTX, userID)
}

func (u *accountUC) List(ctx context.Context, offset, limit int) ([]*model.Account, error) {
	return u.accounts.List(ctx, repository.NoTX, offset, limit)
}

func (u *accountUC) SetSuspended(ctx context.Context, userID string, suspended bool, now time.Time) error {
	return u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		account, err := u.accounts.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		account.IsActive = !suspended
		if err := u.accounts.Save(ctx, tx, account); err != nil {
			return err
		}
		if !suspended {
			return nil
		}
		sub, err := u.subs.FindByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		sub.Status = model.SubscriptionStatusExpired
		sub.UpdatedAt = now
		return u.subs.Save(ctx, tx, sub)
	})
}
