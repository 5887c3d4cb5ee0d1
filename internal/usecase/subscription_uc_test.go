//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trading-signal-subscription/internal/domain"
	"trading-signal-subscription/internal/domain/model"
	"trading-signal-subscription/internal/domain/ports/repository"
	"trading-signal-subscription/internal/usecase"
)

func TestSubscriptionUseCase_GrantTrial(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("starts a 7-day trial on a pending subscription", func(t *testing.T) {
		// --- Arrange ---
		mockSubRepo := NewMockSubscriptionRepo()
		_ = mockSubRepo.Save(ctx, nil, model.NewSubscription("user-1", now.Add(-time.Hour)))
		uc := usecase.NewSubscriptionUseCase(mockSubRepo, NewMockTxManager(), testLogger)

		// --- Act ---
		sub, err := uc.GrantTrial(ctx, "user-1", "admin-1", now)

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if sub.Status != model.SubscriptionStatusTrial {
			t.Errorf("expected TRIAL, got %s", sub.Status)
		}
		if !sub.TrialUsed {
			t.Error("expected TrialUsed to be set")
		}
		if sub.EndDate == nil || !sub.EndDate.Equal(now.Add(7*24*time.Hour)) {
			t.Errorf("expected trial to end 7 days out, got %v", sub.EndDate)
		}
		if sub.AccessGrantedBy != "admin-1" {
			t.Errorf("expected granting admin to be recorded, got %q", sub.AccessGrantedBy)
		}
		if sub.AdminNote != "Trial activated by admin" {
			t.Errorf("unexpected admin note: %q", sub.AdminNote)
		}
	})

	t.Run("second grant fails even after the first trial expired", func(t *testing.T) {
		mockSubRepo := NewMockSubscriptionRepo()
		_ = mockSubRepo.Save(ctx, nil, model.NewSubscription("user-1", now.Add(-time.Hour)))
		uc := usecase.NewSubscriptionUseCase(mockSubRepo, NewMockTxManager(), testLogger)

		if _, err := uc.GrantTrial(ctx, "user-1", "admin-1", now); err != nil {
			t.Fatalf("first grant should succeed: %v", err)
		}
		// Let the trial lapse, sweep it, and try again.
		later := now.Add(8 * 24 * time.Hour)
		if _, err := uc.SweepExpired(ctx, later); err != nil {
			t.Fatalf("sweep failed: %v", err)
		}
		_, err := uc.GrantTrial(ctx, "user-1", "admin-2", later)
		if !errors.Is(err, domain.ErrTrialAlreadyUsed) {
			t.Fatalf("expected ErrTrialAlreadyUsed, got %v", err)
		}
	})

	t.Run("unknown user surfaces ErrNotFound", func(t *testing.T) {
		uc := usecase.NewSubscriptionUseCase(NewMockSubscriptionRepo(), NewMockTxManager(), testLogger)
		_, err := uc.GrantTrial(ctx, "nobody", "admin-1", now)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("nothing is saved when the grant is refused", func(t *testing.T) {
		mockSubRepo := NewMockSubscriptionRepo()
		sub := model.NewSubscription("user-1", now)
		sub.TrialUsed = true
		sub.Status = model.SubscriptionStatusExpired
		_ = mockSubRepo.Save(ctx, nil, sub)

		saves := 0
		mockSubRepo.SaveFunc = func(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
			saves++
			return nil
		}
		uc := usecase.NewSubscriptionUseCase(mockSubRepo, NewMockTxManager(), testLogger)

		if _, err := uc.GrantTrial(ctx, "user-1", "admin-1", now); !errors.Is(err, domain.ErrTrialAlreadyUsed) {
			t.Fatalf("expected ErrTrialAlreadyUsed, got %v", err)
		}
		if saves != 0 {
			t.Errorf("expected no save on refusal, got %d", saves)
		}
	})
}

func TestSubscriptionUseCase_ActivatePlan(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := func(status model.SubscriptionStatus, trialUsed bool) *MockSubscriptionRepo {
		repo := NewMockSubscriptionRepo()
		sub := model.NewSubscription("user-1", now.Add(-30*24*time.Hour))
		sub.Status = status
		sub.TrialUsed = trialUsed
		_ = repo.Save(ctx, nil, sub)
		return repo
	}

	t.Run("activates monthly with a 30-day window", func(t *testing.T) {
		repo := seed(model.SubscriptionStatusTrial, true)
		uc := usecase.NewSubscriptionUseCase(repo, NewMockTxManager(), testLogger)

		sub, err := uc.ActivatePlan(ctx, "user-1", model.PlanMonthly, "admin-1", now)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if sub.Status != model.SubscriptionStatusActive {
			t.Errorf("expected ACTIVE, got %s", sub.Status)
		}
		if sub.EndDate == nil || !sub.EndDate.Equal(now.Add(30*24*time.Hour)) {
			t.Errorf("expected 30-day window, got %v", sub.EndDate)
		}
		if sub.AdminNote != "monthly subscription activated" {
			t.Errorf("unexpected admin note: %q", sub.AdminNote)
		}
	})

	t.Run("lifetime clears the end date", func(t *testing.T) {
		repo := seed(model.SubscriptionStatusExpired, true)
		uc := usecase.NewSubscriptionUseCase(repo, NewMockTxManager(), testLogger)

		sub, err := uc.ActivatePlan(ctx, "user-1", model.PlanLifetime, "admin-1", now)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if sub.EndDate != nil {
			t.Errorf("expected nil end date for lifetime, got %v", sub.EndDate)
		}
		if !sub.IsActive(now.AddDate(5, 0, 0)) {
			t.Error("expected lifetime subscription to stay active")
		}
	})

	t.Run("reactivation works from every prior status", func(t *testing.T) {
		for _, status := range []model.SubscriptionStatus{
			model.SubscriptionStatusPendingApproval,
			model.SubscriptionStatusTrial,
			model.SubscriptionStatusActive,
			model.SubscriptionStatusExpired,
		} {
			repo := seed(status, false)
			uc := usecase.NewSubscriptionUseCase(repo, NewMockTxManager(), testLogger)
			sub, err := uc.ActivatePlan(ctx, "user-1", model.PlanYearly, "admin-1", now)
			if err != nil {
				t.Fatalf("activation from %s failed: %v", status, err)
			}
			if sub.Status != model.SubscriptionStatusActive {
				t.Errorf("activation from %s: expected ACTIVE, got %s", status, sub.Status)
			}
			if sub.TrialUsed {
				t.Errorf("activation from %s must not touch TrialUsed", status)
			}
		}
	})
}

func TestSubscriptionUseCase_SweepExpired(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("expires overdue records and is idempotent", func(t *testing.T) {
		repo := NewMockSubscriptionRepo()
		uc := usecase.NewSubscriptionUseCase(repo, NewMockTxManager(), testLogger)

		// One overdue trial, one still-active yearly, one lifetime.
		trial := model.NewSubscription("trial-user", t0)
		_ = repo.Save(ctx, nil, trial)
		if _, err := uc.GrantTrial(ctx, "trial-user", "admin-1", t0); err != nil {
			t.Fatal(err)
		}
		yearly := model.NewSubscription("yearly-user", t0)
		_ = repo.Save(ctx, nil, yearly)
		if _, err := uc.ActivatePlan(ctx, "yearly-user", model.PlanYearly, "admin-1", t0); err != nil {
			t.Fatal(err)
		}
		life := model.NewSubscription("lifetime-user", t0)
		_ = repo.Save(ctx, nil, life)
		if _, err := uc.ActivatePlan(ctx, "lifetime-user", model.PlanLifetime, "admin-1", t0); err != nil {
			t.Fatal(err)
		}

		// Day 8: only the trial is overdue.
		n, err := uc.SweepExpired(ctx, t0.Add(8*24*time.Hour))
		if err != nil {
			t.Fatalf("sweep failed: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 expiration on day 8, got %d", n)
		}

		// Re-running immediately changes nothing.
		n, err = uc.SweepExpired(ctx, t0.Add(8*24*time.Hour))
		if err != nil {
			t.Fatalf("second sweep failed: %v", err)
		}
		if n != 0 {
			t.Fatalf("expected idempotent re-run, got %d", n)
		}

		// Day 366: the yearly lapses, the lifetime never does.
		n, err = uc.SweepExpired(ctx, t0.Add(366*24*time.Hour))
		if err != nil {
			t.Fatalf("third sweep failed: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected the yearly subscription to expire, got %d", n)
		}
		status, err := uc.StatusFor(ctx, "lifetime-user", t0.Add(366*24*time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		if !status.IsActive {
			t.Error("expected the lifetime subscription to survive every sweep")
		}
	})
}

func TestSubscriptionUseCase_Expire(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := NewMockSubscriptionRepo()
	uc := usecase.NewSubscriptionUseCase(repo, NewMockTxManager(), testLogger)
	_ = repo.Save(ctx, nil, model.NewSubscription("user-1", t0))
	if _, err := uc.ActivatePlan(ctx, "user-1", model.PlanLifetime, "admin-1", t0); err != nil {
		t.Fatal(err)
	}

	expiredAt := t0.Add(24 * time.Hour)
	if err := uc.Expire(ctx, "user-1", expiredAt); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	sub, _ := repo.FindByUser(ctx, nil, "user-1")
	if sub.Status != model.SubscriptionStatusExpired {
		t.Errorf("expected EXPIRED, got %s", sub.Status)
	}
	if !sub.UpdatedAt.Equal(expiredAt) {
		t.Errorf("expected UpdatedAt to carry the caller's clock, got %v", sub.UpdatedAt)
	}

	if err := uc.Expire(ctx, "nobody", expiredAt); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubscriptionUseCase_StatusFor(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := NewMockSubscriptionRepo()
	uc := usecase.NewSubscriptionUseCase(repo, NewMockTxManager(), testLogger)
	_ = repo.Save(ctx, nil, model.NewSubscription("user-1", t0))

	t.Run("pending approval", func(t *testing.T) {
		st, err := uc.StatusFor(ctx, "user-1", t0)
		if err != nil {
			t.Fatal(err)
		}
		if st.IsActive || !st.NeedsApproval {
			t.Error("expected an inactive, approval-needing status")
		}
		if st.TrialExpired {
			t.Error("expected no trial expiry before any trial was granted")
		}
		if st.Message != "Waiting for admin approval to start trial" {
			t.Errorf("unexpected message: %q", st.Message)
		}
	})

	t.Run("trial lifecycle day by day", func(t *testing.T) {
		if _, err := uc.GrantTrial(ctx, "user-1", "admin-1", t0); err != nil {
			t.Fatal(err)
		}

		st, _ := uc.StatusFor(ctx, "user-1", t0)
		if !st.IsActive || st.RemainingDays == nil || *st.RemainingDays != 7 {
			t.Errorf("day 0: expected active with 7 days, got active=%v remaining=%v", st.IsActive, st.RemainingDays)
		}

		st, _ = uc.StatusFor(ctx, "user-1", t0.Add(6*24*time.Hour+time.Hour))
		if !st.IsActive || st.RemainingDays == nil || *st.RemainingDays != 1 {
			t.Errorf("day 6: expected active with 1 day, got active=%v remaining=%v", st.IsActive, st.RemainingDays)
		}
		if st.Message != "Trial: 1 day remaining" {
			t.Errorf("day 6: unexpected message %q", st.Message)
		}
		if st.TrialExpired {
			t.Error("day 6: expected the trial to not be expired yet")
		}

		// Past the end date but before the sweep has run: access is gone
		// even though the stored status still says TRIAL.
		st, _ = uc.StatusFor(ctx, "user-1", t0.Add(8*24*time.Hour))
		if st.IsActive {
			t.Error("day 8: expected no access after the trial window")
		}
		if !st.TrialExpired {
			t.Error("day 8: expected the trial to report as expired")
		}
		if st.Message != "Trial expired" {
			t.Errorf("day 8: unexpected message %q", st.Message)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := uc.StatusFor(ctx, "nobody", t0); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
