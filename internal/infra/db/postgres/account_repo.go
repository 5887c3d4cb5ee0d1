package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trading-signal-subscription/internal/domain"
	"trading-signal-subscription/internal/domain/model"
	"trading-signal-subscription/internal/domain/ports/repository"
)

var _ repository.AccountRepository = (*accountRepo)(nil)

type accountRepo struct{ pool *pgxpool.Pool }

func NewAccountRepo(pool *pgxpool.Pool) *accountRepo {
	return &accountRepo{pool: pool}
}

const accountColumns = `id, email, password_hash, name, tradingview_username, role, is_active, created_at, last_login_at`

func (r *accountRepo) Save(ctx context.Context, tx repository.Tx, a *model.Account) error {
	const q = `
INSERT INTO accounts (id, email, password_hash, name, tradingview_username, role, is_active, created_at, last_login_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  email=$2, password_hash=$3, name=$4, tradingview_username=$5, role=$6, is_active=$7, last_login_at=$9;`

	_, err := execSQL(ctx, r.pool, tx, q, a.ID, a.Email, a.PasswordHash, a.Name, nullIfEmpty(a.TradingViewUsername), a.Role, a.IsActive, a.CreatedAt, a.LastLoginAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *accountRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Account, error) {
	return r.findOne(ctx, tx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id)
}

func (r *accountRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Account, error) {
	return r.findOne(ctx, tx, `SELECT `+accountColumns+` FROM accounts WHERE email=$1`, email)
}

func (r *accountRepo) FindByTradingViewUsername(ctx context.Context, tx repository.Tx, username string) (*model.Account, error) {
	return r.findOne(ctx, tx, `SELECT `+accountColumns+` FROM accounts WHERE tradingview_username=$1`, username)
}

func (r *accountRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.Account, error) {
	row, err := pickRow(ctx, r.pool, tx, q+";", arg)
	if err != nil {
		return nil, err
	}
	a := &model.Account{}
	if err := scanAccount(row, a); err != nil {
		return nil, err
	}
	return a, nil
}

func scanAccount(row pgx.Row, a *model.Account) error {
	var tvUsername *string
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &tvUsername, &a.Role, &a.IsActive, &a.CreatedAt, &a.LastLoginAt); err != nil {
		if err == pgx.ErrNoRows {
			return domain.ErrNotFound
		}
		return domain.ErrReadDatabaseRow
	}
	if tvUsername != nil {
		a.TradingViewUsername = *tvUsername
	}
	return nil
}

func (r *accountRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	rows, err := pickRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Account
	for rows.Next() {
		a := &model.Account{}
		if err := scanAccount(rows, a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountRepo) CountAccounts(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM accounts;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
