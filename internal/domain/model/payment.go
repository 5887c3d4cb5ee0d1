package model

import (
	"crypto/rand"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
)

type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "PENDING"
	ClaimStatusApproved ClaimStatus = "APPROVED"
	ClaimStatusRejected ClaimStatus = "REJECTED"
)

// txidPattern matches a TRC20 transaction hash: exactly 64 hex characters.
var txidPattern = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)

// IsValidTransactionID reports whether txid looks like a real transaction hash.
func IsValidTransactionID(txid string) bool {
	return txidPattern.MatchString(txid)
}

// PaymentClaim is one user-submitted payment proof awaiting admin review.
// TXID is globally unique across all claims ever submitted.
type PaymentClaim struct {
	ID            string // ULID, time-ordered
	UserID        string
	TXID          string
	AmountCents   int64
	RequestedPlan string // raw user input; resolved via ResolvePlan on approval
	PaymentDate   time.Time
	Status        ClaimStatus
	ReviewedAt    *time.Time
	ReviewedBy    string
	AdminNote     string
	CreatedAt     time.Time
}

// NewPaymentClaim builds a PENDING claim. The txid must already be validated.
func NewPaymentClaim(userID, txid string, amountCents int64, requestedPlan string, now time.Time) *PaymentClaim {
	return &PaymentClaim{
		ID:            ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		UserID:        userID,
		TXID:          txid,
		AmountCents:   amountCents,
		RequestedPlan: requestedPlan,
		PaymentDate:   now,
		Status:        ClaimStatusPending,
		CreatedAt:     now,
	}
}

// Reviewed reports whether the claim has reached a terminal status.
func (c *PaymentClaim) Reviewed() bool {
	return c.Status != ClaimStatusPending
}
