// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"trading-signal-subscription/internal/domain"
	"trading-signal-subscription/internal/domain/model"
	"trading-signal-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PaymentUseCase is the request/approve/reject workflow for payment claims.
type PaymentUseCase interface {
	// SubmitClaim records a user's payment proof as a PENDING claim.
	SubmitClaim(ctx context.Context, userID, txid string, amountCents int64, requestedPlan string, now time.Time) (*model.PaymentClaim, error)
	// ApproveClaim marks the claim APPROVED and activates the owner's
	// subscription for the resolved plan, atomically.
	ApproveClaim(ctx context.Context, claimID, reviewerID, note string, now time.Time) (*model.PaymentClaim, error)
	// RejectClaim marks the claim REJECTED with the supplied reason.
	RejectClaim(ctx context.Context, claimID, reviewerID, reason string, now time.Time) (*model.PaymentClaim, error)
	ListPending(ctx context.Context) ([]*model.PaymentClaim, error)
	ListForUser(ctx context.Context, userID string) ([]*model.PaymentClaim, error)
}

type paymentUC struct {
	claims    repository.PaymentClaimRepository
	activator PlanActivator
	txm       repository.TransactionManager
	log       *zerolog.Logger
}

func NewPaymentUseCase(claims repository.PaymentClaimRepository, activator PlanActivator, txm repository.TransactionManager, logger *zerolog.Logger) *paymentUC {
	l := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{claims: claims, activator: activator, txm: txm, log: &l}
}

func (u *paymentUC) SubmitClaim(ctx context.Context, userID, txid string, amountCents int64, requestedPlan string, now time.Time) (*model.PaymentClaim, error) {
	if !model.IsValidTransactionID(txid) {
		return nil, domain.ErrInvalidTransactionID
	}

	// Pre-check for a friendly error; the unique index on txid is the real
	// guarantee and Save maps its violation to the same sentinel.
	if existing, err := u.claims.FindByTXID(ctx, repository.NoTX, txid); err == nil && existing != nil {
		return nil, domain.ErrDuplicateClaim
	} else if err != nil && err != domain.ErrNotFound {
		return nil, err
	}

	claim := model.NewPaymentClaim(userID, txid, amountCents, requestedPlan, now)
	if err := u.claims.Save(ctx, repository.NoTX, claim); err != nil {
		return nil, err
	}
	u.log.Info().Str("claim_id", claim.ID).Str("user_id", userID).Str("plan", requestedPlan).Msg("payment claim submitted")
	return claim, nil
}

func (u *paymentUC) ApproveClaim(ctx context.Context, claimID, reviewerID, note string, now time.Time) (*model.PaymentClaim, error) {
	if note == "" {
		note = "Payment verified and approved"
	}

	var approved *model.PaymentClaim
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Re-read inside the tx (FOR UPDATE) so two concurrent reviews
		// serialize: one sees PENDING, the other ErrClaimAlreadyReviewed.
		claim, err := u.claims.FindByID(ctx, tx, claimID)
		if err != nil {
			return err
		}
		if claim.Reviewed() {
			return domain.ErrClaimAlreadyReviewed
		}

		claim.Status = model.ClaimStatusApproved
		claim.ReviewedAt = &now
		claim.ReviewedBy = reviewerID
		claim.AdminNote = note
		if err := u.claims.Save(ctx, tx, claim); err != nil {
			return err
		}

		plan := model.ResolvePlan(claim.RequestedPlan)
		if price := model.Plans[plan].PriceCents; claim.AmountCents != price {
			// The admin already eyeballed the payment; this is an audit
			// breadcrumb, not a rejection.
			u.log.Warn().Str("claim_id", claim.ID).Str("plan", string(plan)).
				Int64("amount_cents", claim.AmountCents).Int64("plan_price_cents", price).
				Msg("approved amount differs from plan price")
		}
		subNote := fmt.Sprintf("Activated via payment %s...", claim.TXID[:8])
		if _, err := u.activator.ActivatePlanInTx(ctx, tx, claim.UserID, plan, reviewerID, subNote, now); err != nil {
			return err
		}

		approved = claim
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("claim_id", claimID).Str("reviewed_by", reviewerID).Msg("payment claim approved")
	return approved, nil
}

func (u *paymentUC) RejectClaim(ctx context.Context, claimID, reviewerID, reason string, now time.Time) (*model.PaymentClaim, error) {
	var rejected *model.PaymentClaim
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		claim, err := u.claims.FindByID(ctx, tx, claimID)
		if err != nil {
			return err
		}
		if claim.Reviewed() {
			return domain.ErrClaimAlreadyReviewed
		}
		claim.Status = model.ClaimStatusRejected
		claim.ReviewedAt = &now
		claim.ReviewedBy = reviewerID
		claim.AdminNote = reason
		if err := u.claims.Save(ctx, tx, claim); err != nil {
			return err
		}
		rejected = claim
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("claim_id", claimID).Str("reviewed_by", reviewerID).Msg("payment claim rejected")
	return rejected, nil
}

func (u *paymentUC) ListPending(ctx context.Context) ([]*model.PaymentClaim, error) {
	return u.claims.ListPending(ctx, repository.NoTX)
}

func (u *paymentUC) ListForUser(ctx context.Context, userID string) ([]*model.PaymentClaim, error) {
	return u.claims.ListByUser(ctx, repository.NoTX, userID)
}
