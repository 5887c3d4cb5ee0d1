//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"trading-signal-subscription/internal/domain"
	"trading-signal-subscription/internal/domain/model"
	"trading-signal-subscription/internal/domain/ports/repository"
)

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*model.Subscription // by user id

	SaveFunc          func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	FindByUserFunc    func(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error)
	ExpireOverdueFunc func(ctx context.Context, tx repository.Tx, now time.Time) (int, error)
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{subs: make(map[string]*model.Subscription)}
}

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.subs[s.UserID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubscriptionRepo) ExpireOverdue(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	if m.ExpireOverdueFunc != nil {
		return m.ExpireOverdueFunc(ctx, tx, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.subs {
		if s.Status != model.SubscriptionStatusTrial && s.Status != model.SubscriptionStatusActive {
			continue
		}
		if s.EndDate == nil || now.Before(*s.EndDate) {
			continue
		}
		s.Status = model.SubscriptionStatusExpired
		s.UpdatedAt = now
		n++
	}
	return n, nil
}

func (m *MockSubscriptionRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.SubscriptionStatus) ([]*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Subscription
	for _, s := range m.subs {
		if s.Status == status {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockSubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.SubscriptionStatus) (int, error) {
	subs, err := m.ListByStatus(ctx, tx, status)
	if err != nil {
		return 0, err
	}
	return len(subs), nil
}

func (m *MockSubscriptionRepo) ActiveUsernames(ctx context.Context, tx repository.Tx) ([]model.ActiveUsername, error) {
	return nil, nil
}

// ---- Mock PaymentClaimRepository ----

type MockClaimRepo struct {
	mu     sync.Mutex
	claims map[string]*model.PaymentClaim // by claim id

	SaveFunc     func(ctx context.Context, tx repository.Tx, c *model.PaymentClaim) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.PaymentClaim, error)
}

var _ repository.PaymentClaimRepository = (*MockClaimRepo)(nil)

func NewMockClaimRepo() *MockClaimRepo {
	return &MockClaimRepo{claims: make(map[string]*model.PaymentClaim)}
}

func (m *MockClaimRepo) Save(ctx context.Context, tx repository.Tx, c *model.PaymentClaim) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Mirror the unique index on txid: a different claim id with the same
	// txid is a duplicate.
	for _, ex := range m.claims {
		if ex.TXID == c.TXID && ex.ID != c.ID {
			return domain.ErrDuplicateClaim
		}
	}
	cp := *c
	m.claims[c.ID] = &cp
	return nil
}

func (m *MockClaimRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentClaim, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockClaimRepo) FindByTXID(ctx context.Context, tx repository.Tx, txid string) (*model.PaymentClaim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.claims {
		if c.TXID == txid {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockClaimRepo) ListPending(ctx context.Context, tx repository.Tx) ([]*model.PaymentClaim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentClaim
	for _, c := range m.claims {
		if c.Status == model.ClaimStatusPending {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	return out, nil
}

func (m *MockClaimRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentClaim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentClaim
	for _, c := range m.claims {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockClaimRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.ClaimStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.claims {
		if c.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *MockClaimRepo) SumApproved(ctx context.Context, tx repository.Tx, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, c := range m.claims {
		if c.Status != model.ClaimStatusApproved || c.ReviewedAt == nil {
			continue
		}
		if !since.IsZero() && c.ReviewedAt.Before(since) {
			continue
		}
		sum += c.AmountCents
	}
	return sum, nil
}

// ---- Mock AccountRepository ----

type MockAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*model.Account // by id

	SaveFunc func(ctx context.Context, tx repository.Tx, a *model.Account) error
}

var _ repository.AccountRepository = (*MockAccountRepo)(nil)

func NewMockAccountRepo() *MockAccountRepo {
	return &MockAccountRepo{accounts: make(map[string]*model.Account)}
}

func (m *MockAccountRepo) Save(ctx context.Context, tx repository.Tx, a *model.Account) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *MockAccountRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MockAccountRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockAccountRepo) FindByTradingViewUsername(ctx context.Context, tx repository.Tx, username string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.TradingViewUsername == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockAccountRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Account
	for _, a := range m.accounts {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockAccountRepo) CountAccounts(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts), nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

// WithTx runs fn immediately with NoTX unless a test overrides it.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// newTestLogger returns a silent logger so test output stays clean.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
