// File: internal/usecase/subscription_uc.go
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
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionStatus is the read-model returned to callers asking about a
// single account's entitlement.
type SubscriptionStatus struct {
	Status        model.SubscriptionStatus `json:"status"`
	IsActive      bool                     `json:"is_active"`
	TrialExpired  bool                     `json:"trial_expired"`
	RemainingDays *int                     `json:"remaining_days"`
	Message       string                   `json:"message"`
	NeedsApproval bool                     `json:"needs_approval"`
	EndDate       *time.Time               `json:"end_date,omitempty"`
}

// SubscriptionUseCase drives the subscription state machine. Every transition
// is a guarded read-then-write against the persisted record.
type SubscriptionUseCase interface {
	// GrantTrial starts the one-time 7-day trial. Fails with
	// domain.ErrTrialAlreadyUsed if the account ever had one, regardless of
	// the current status.
	GrantTrial(ctx context.Context, userID, grantedBy string, now time.Time) (*model.Subscription, error)
	// ActivatePlan applies a fresh paid grant. It has no precondition on the
	// prior status: renewal, trial conversion and post-lapse re-subscription
	// all land here.
	ActivatePlan(ctx context.Context, userID string, plan model.PlanID, grantedBy string, now time.Time) (*model.Subscription, error)
	// Expire unconditionally moves the subscription to EXPIRED.
	Expire(ctx context.Context, userID string, now time.Time) error
	// SweepExpired bulk-expires every TRIAL/ACTIVE subscription whose end
	// date has passed and returns how many records changed.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	StatusFor(ctx context.Context, userID string, now time.Time) (*SubscriptionStatus, error)
	ListPendingApprovals(ctx context.Context) ([]*model.Subscription, error)
}

// PlanActivator is the slice of the lifecycle the payment workflow needs
// inside its own transaction.
type PlanActivator interface {
	ActivatePlanInTx(ctx context.Context, tx repository.Tx, userID string, plan model.PlanID, grantedBy, note string, now time.Time) (*model.Subscription, error)
}

type subscriptionUC struct {
	subs repository.SubscriptionRepository
	txm  repository.TransactionManager
	log  *zerolog.Logger
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository, txm repository.TransactionManager, logger *zerolog.Logger) *subscriptionUC {
	l := logger.With().Str("component", "SubscriptionUC").Logger()
	return &subscriptionUC{subs: subs, txm: txm, log: &l}
}

func (uc *subscriptionUC) GrantTrial(ctx context.Context, userID, grantedBy string, now time.Time) (*model.Subscription, error) {
	var granted *model.Subscription
	err := uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := uc.subs.FindByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		// TrialUsed is monotonic: once true the trial is gone for good,
		// whatever the current status is.
		if sub.TrialUsed {
			return domain.ErrTrialAlreadyUsed
		}
		end := model.TrialEndDate(now)
		sub.Status = model.SubscriptionStatusTrial
		sub.StartDate = &now
		sub.EndDate = &end
		sub.TrialUsed = true
		sub.AccessGrantedAt = &now
		sub.AccessGrantedBy = grantedBy
		sub.AdminNote = "Trial activated by admin"
		sub.UpdatedAt = now
		if err := uc.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		granted = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", userID).Str("granted_by", grantedBy).Msg("trial granted")
	return granted, nil
}

func (uc *subscriptionUC) ActivatePlan(ctx context.Context, userID string, plan model.PlanID, grantedBy string, now time.Time) (*model.Subscription, error) {
	var activated *model.Subscription
	err := uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		note := fmt.Sprintf("%s subscription activated", plan)
		sub, err := uc.ActivatePlanInTx(ctx, tx, userID, plan, grantedBy, note, now)
		if err != nil {
			return err
		}
		activated = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}

// ActivatePlanInTx performs the activation against an already-open
// transaction. The payment workflow calls this so that claim approval and
// activation commit as one unit.
func (uc *subscriptionUC) ActivatePlanInTx(ctx context.Context, tx repository.Tx, userID string, plan model.PlanID, grantedBy, note string, now time.Time) (*model.Subscription, error) {
	sub, err := uc.subs.FindByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	sub.Status = model.SubscriptionStatusActive
	sub.StartDate = &now
	sub.EndDate = model.PlanEndDate(now, plan)
	sub.AccessGrantedAt = &now
	sub.AccessGrantedBy = grantedBy
	sub.AdminNote = note
	sub.UpdatedAt = now
	if err := uc.subs.Save(ctx, tx, sub); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", userID).Str("plan", string(plan)).Str("granted_by", grantedBy).Msg("plan activated")
	return sub, nil
}

func (uc *subscriptionUC) Expire(ctx context.Context, userID string, now time.Time) error {
	return uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := uc.subs.FindByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		sub.Status = model.SubscriptionStatusExpired
		sub.UpdatedAt = now
		return uc.subs.Save(ctx, tx, sub)
	})
}

func (uc *subscriptionUC) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	// Single UPDATE; the predicate only moves records forward past their end
	// date, so re-running or racing an activation is harmless.
	n, err := uc.subs.ExpireOverdue(ctx, repository.NoTX, now)
	if err != nil {
		return 0, fmt.Errorf("sweep expired: %w", err)
	}
	return n, nil
}

func (uc *subscriptionUC) StatusFor(ctx context.Context, userID string, now time.Time) (*SubscriptionStatus, error) {
	sub, err := uc.subs.FindByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	return &SubscriptionStatus{
		Status:        sub.Status,
		IsActive:      sub.IsActive(now),
		TrialExpired:  sub.IsTrialExpired(now),
		RemainingDays: sub.RemainingDays(now),
		Message:       sub.StatusMessage(now),
		NeedsApproval: sub.NeedsApproval(),
		EndDate:       sub.EndDate,
	}, nil
}

func (uc *subscriptionUC) ListPendingApprovals(ctx context.Context) ([]*model.Subscription, error) {
	return uc.subs.ListByStatus(ctx, repository.NoTX, model.SubscriptionStatusPendingApproval)
}
