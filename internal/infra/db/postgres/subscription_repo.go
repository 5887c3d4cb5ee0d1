package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trading-signal-subscription/internal/domain"
	"trading-signal-subscription/internal/domain/model"
	"trading-signal-subscription/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `user_id, status, start_date, end_date, trial_used, access_granted_at, access_granted_by, admin_note, created_at, updated_at`

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (user_id, status, start_date, end_date, trial_used, access_granted_at, access_granted_by, admin_note, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (user_id) DO UPDATE SET
  status=$2, start_date=$3, end_date=$4, trial_used=$5, access_granted_at=$6, access_granted_by=$7, admin_note=$8, updated_at=$10;`

	_, err := execSQL(ctx, r.pool, tx, q, s.UserID, s.Status, s.StartDate, s.EndDate, s.TrialUsed, s.AccessGrantedAt, nullIfEmpty(s.AccessGrantedBy), s.AdminNote, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", userID)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) ExpireOverdue(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `
UPDATE subscriptions
   SET status=$1, updated_at=$2
 WHERE status IN ($3,$4)
   AND end_date IS NOT NULL
   AND end_date <= $2;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		model.SubscriptionStatusExpired, now,
		model.SubscriptionStatusTrial, model.SubscriptionStatusActive)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return int(tag.RowsAffected()), nil
}

func (r *subscriptionRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.SubscriptionStatus) ([]*model.Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE status=$1 ORDER BY created_at DESC;`
	rows, err := pickRows(ctx, r.pool, tx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *subscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.SubscriptionStatus) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM subscriptions WHERE status=$1;`, status)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *subscriptionRepo) ActiveUsernames(ctx context.Context, tx repository.Tx) ([]model.ActiveUsername, error) {
	const q = `
SELECT a.tradingview_username, s.status, s.end_date
  FROM subscriptions s
  JOIN accounts a ON a.id = s.user_id
 WHERE s.status IN ($1,$2)
 ORDER BY a.tradingview_username ASC;`

	rows, err := pickRows(ctx, r.pool, tx, q, model.SubscriptionStatusTrial, model.SubscriptionStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ActiveUsername
	for rows.Next() {
		var u model.ActiveUsername
		if err := rows.Scan(&u.Username, &u.Status, &u.ExpiresAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	var grantedBy *string
	if err := row.Scan(&s.UserID, &s.Status, &s.StartDate, &s.EndDate, &s.TrialUsed, &s.AccessGrantedAt, &grantedBy, &s.AdminNote, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if grantedBy != nil {
		s.AccessGrantedBy = *grantedBy
	}
	return s, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
