package model

import (
	"fmt"
	"time"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPendingApproval SubscriptionStatus = "PENDING_APPROVAL"
	SubscriptionStatusTrial           SubscriptionStatus = "TRIAL"
	SubscriptionStatusActive          SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired         SubscriptionStatus = "EXPIRED"
)

// TrialDuration is the fixed length of the one-time free trial.
const TrialDuration = 7 * 24 * time.Hour

// Subscription is the single entitlement record owned by an account.
// All policy methods take `now` explicitly; nothing here reads the clock.
type Subscription struct {
	UserID          string
	Status          SubscriptionStatus
	StartDate       *time.Time
	EndDate         *time.Time // nil means no expiration (lifetime)
	TrialUsed       bool       // monotonic; never resets once true
	AccessGrantedAt *time.Time
	AccessGrantedBy string
	AdminNote       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewSubscription is the initial record created together with its account.
func NewSubscription(userID string, now time.Time) *Subscription {
	return &Subscription{
		UserID:    userID,
		Status:    SubscriptionStatusPendingApproval,
		TrialUsed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TrialEndDate computes the trial expiration from its start.
func TrialEndDate(start time.Time) time.Time {
	return start.Add(TrialDuration)
}

// IsActive reports whether the subscription currently grants access.
func (s *Subscription) IsActive(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Status != SubscriptionStatusTrial && s.Status != SubscriptionStatusActive {
		return false
	}
	if s.EndDate == nil {
		return true
	}
	return now.Before(*s.EndDate)
}

// IsTrialExpired reports whether a trial has run out without being swept yet.
func (s *Subscription) IsTrialExpired(now time.Time) bool {
	if s == nil || s.Status != SubscriptionStatusTrial || s.EndDate == nil {
		return false
	}
	return !now.Before(*s.EndDate)
}

// RemainingDays returns the whole days left until EndDate, rounded up.
// Nil means no expiration; 0 means already past.
func (s *Subscription) RemainingDays(now time.Time) *int {
	if s == nil || s.EndDate == nil {
		return nil
	}
	if !now.Before(*s.EndDate) {
		zero := 0
		return &zero
	}
	d := int((s.EndDate.Sub(now) + 24*time.Hour - 1) / (24 * time.Hour))
	return &d
}

// NeedsApproval reports whether the account is still waiting for an admin.
func (s *Subscription) NeedsApproval() bool {
	return s != nil && s.Status == SubscriptionStatusPendingApproval
}

// StatusMessage renders the user-facing summary of the subscription state.
func (s *Subscription) StatusMessage(now time.Time) string {
	if s == nil {
		return "No subscription found"
	}
	switch s.Status {
	case SubscriptionStatusPendingApproval:
		return "Waiting for admin approval to start trial"
	case SubscriptionStatusTrial:
		remaining := s.RemainingDays(now)
		if remaining == nil {
			return "Trial active"
		}
		if *remaining <= 0 {
			return "Trial expired"
		}
		return fmt.Sprintf("Trial: %d %s remaining", *remaining, pluralDays(*remaining))
	case SubscriptionStatusActive:
		remaining := s.RemainingDays(now)
		if remaining == nil {
			return "Lifetime subscription active"
		}
		if *remaining <= 0 {
			return "Subscription expired"
		}
		if *remaining <= 7 {
			return fmt.Sprintf("Expiring soon: %d %s left", *remaining, pluralDays(*remaining))
		}
		return fmt.Sprintf("Active until %s", s.EndDate.Format("Jan 2, 2006"))
	case SubscriptionStatusExpired:
		return "Subscription expired - Renew to continue access"
	default:
		return "Unknown status"
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
