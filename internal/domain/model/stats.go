package model

import "time"

// ActiveUsername is one row of the TradingView access export: the admin
// copies these into the platform's allow-list by hand.
type ActiveUsername struct {
	Username  string
	Status    SubscriptionStatus
	ExpiresAt *time.Time
}

// DashboardStats are the admin landing-page counters.
type DashboardStats struct {
	TotalUsers          int
	ActiveSubscriptions int
	TrialUsers          int
	PendingClaims       int
	PendingApprovals    int
	RevenueTotalCents   int64
	RevenueMonthCents   int64
}
