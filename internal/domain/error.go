package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound             = errors.New("entity not found")
	ErrAlreadyExists        = errors.New("entity already exists")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidTransactionID = errors.New("invalid transaction id format")
	ErrDuplicateClaim       = errors.New("transaction id already submitted")
	ErrTrialAlreadyUsed     = errors.New("trial already used")
	ErrClaimAlreadyReviewed = errors.New("payment claim already reviewed")
	ErrForbidden            = errors.New("operation not permitted")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountSuspended     = errors.New("account suspended")

	// Infrastructure-side errors surfaced through repositories
	ErrInvalidExecContext = errors.New("invalid execution context for query")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
