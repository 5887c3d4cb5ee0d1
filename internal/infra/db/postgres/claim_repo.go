package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trading-signal-subscription/internal/domain"
	"trading-signal-subscription/internal/domain/model"
	"trading-signal-subscription/internal/domain/ports/repository"
)

var _ repository.PaymentClaimRepository = (*claimRepo)(nil)

type claimRepo struct{ pool *pgxpool.Pool }

func NewClaimRepo(pool *pgxpool.Pool) *claimRepo {
	return &claimRepo{pool: pool}
}

const claimColumns = `id, user_id, txid, amount_cents, requested_plan, payment_date, status, reviewed_at, reviewed_by, admin_note, created_at`

func (r *claimRepo) Save(ctx context.Context, tx repository.Tx, c *model.PaymentClaim) error {
	const q = `
INSERT INTO payment_claims (id, user_id, txid, amount_cents, requested_plan, payment_date, status, reviewed_at, reviewed_by, admin_note, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  status=$7, reviewed_at=$8, reviewed_by=$9, admin_note=$10;`

	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.UserID, c.TXID, c.AmountCents, c.RequestedPlan, c.PaymentDate, c.Status, c.ReviewedAt, nullIfEmpty(c.ReviewedBy), c.AdminNote, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// txid carries a global unique index; a collision is a replayed
			// transaction proof, not an infrastructure failure.
			return domain.ErrDuplicateClaim
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *claimRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentClaim, error) {
	q := `SELECT ` + claimColumns + ` FROM payment_claims WHERE id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", id)
	if err != nil {
		return nil, err
	}
	return scanClaim(row)
}

func (r *claimRepo) FindByTXID(ctx context.Context, tx repository.Tx, txid string) (*model.PaymentClaim, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+claimColumns+` FROM payment_claims WHERE txid=$1;`, txid)
	if err != nil {
		return nil, err
	}
	return scanClaim(row)
}

func (r *claimRepo) ListPending(ctx context.Context, tx repository.Tx) ([]*model.PaymentClaim, error) {
	const q = `SELECT ` + claimColumns + ` FROM payment_claims WHERE status=$1 ORDER BY payment_date DESC;`
	return r.list(ctx, tx, q, model.ClaimStatusPending)
}

func (r *claimRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentClaim, error) {
	const q = `SELECT ` + claimColumns + ` FROM payment_claims WHERE user_id=$1 ORDER BY created_at DESC;`
	return r.list(ctx, tx, q, userID)
}

func (r *claimRepo) list(ctx context.Context, tx repository.Tx, q string, arg interface{}) ([]*model.PaymentClaim, error) {
	rows, err := pickRows(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PaymentClaim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *claimRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.ClaimStatus) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM payment_claims WHERE status=$1;`, status)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *claimRepo) SumApproved(ctx context.Context, tx repository.Tx, since time.Time) (int64, error) {
	const q = `
SELECT COALESCE(SUM(amount_cents),0) FROM payment_claims
 WHERE status=$1 AND reviewed_at >= $2;`

	// A zero time means all time; every reviewed_at is after the epoch.
	s := since
	if s.IsZero() {
		s = time.Unix(0, 0).UTC()
	}
	row, err := pickRow(ctx, r.pool, tx, q, model.ClaimStatusApproved, s)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func scanClaim(row pgx.Row) (*model.PaymentClaim, error) {
	c := &model.PaymentClaim{}
	var reviewedBy *string
	if err := row.Scan(&c.ID, &c.UserID, &c.TXID, &c.AmountCents, &c.RequestedPlan, &c.PaymentDate, &c.Status, &c.ReviewedAt, &reviewedBy, &c.AdminNote, &c.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if reviewedBy != nil {
		c.ReviewedBy = *reviewedBy
	}
	return c, nil
}
