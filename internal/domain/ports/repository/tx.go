package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque handle for an in-flight transaction. Repository methods
// accept it as their second argument; nil means "run against the pool".
// The concrete type is infra-defined (pgx.Tx for Postgres).
type Tx interface{}

// NoTX marks the non-transactional path at call sites.
var NoTX Tx

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via tx. If fn returns an error the
// transaction is rolled back; otherwise it is committed. Keeping the
// handle opaque keeps transaction types out of the use-case interfaces.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
