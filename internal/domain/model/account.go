package model

import (
	"time"

	"github.com/google/uuid"

	"trading-signal-subscription/internal/domain"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Account is a registered member of the signal service. Each account owns
// exactly one Subscription, created together with it.
type Account struct {
	ID                  string // UUID
	Email               string
	PasswordHash        string
	Name                string
	TradingViewUsername string
	Role                Role
	IsActive            bool
	CreatedAt           time.Time
	LastLoginAt         *time.Time
}

func NewAccount(email, passwordHash, name, tradingViewUsername string, now time.Time) (*Account, error) {
	if email == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Account{
		ID:                  uuid.NewString(),
		Email:               email,
		PasswordHash:        passwordHash,
		Name:                name,
		TradingViewUsername: tradingViewUsername,
		Role:                RoleUser,
		IsActive:            true,
		CreatedAt:           now,
	}, nil
}

func (a *Account) IsZero() bool  { return a == nil || a.ID == "" }
func (a *Account) IsAdmin() bool { return a != nil && a.Role == RoleAdmin }
