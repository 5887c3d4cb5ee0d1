package model

import (
	"strings"
	"time"
)

type PlanID string

const (
	PlanMonthly  PlanID = "monthly"
	PlanYearly   PlanID = "yearly"
	PlanLifetime PlanID = "lifetime"
)

// Plan is a purchasable entitlement with a fixed duration and price.
// DurationDays is nil for non-expiring (lifetime) plans.
type Plan struct {
	ID           PlanID
	DurationDays *int
	PriceCents   int64
}

func days(n int) *int { return &n }

// Plans is the static plan table. It is fixed for the process lifetime;
// plan ids are persisted in claims and must stay stable.
var Plans = map[PlanID]Plan{
	PlanMonthly:  {ID: PlanMonthly, DurationDays: days(30), PriceCents: 49_00},
	PlanYearly:   {ID: PlanYearly, DurationDays: days(365), PriceCents: 399_00},
	PlanLifetime: {ID: PlanLifetime, DurationDays: nil, PriceCents: 999_00},
}

// ListPlans returns the plan table in display order, cheapest first.
func ListPlans() []Plan {
	return []Plan{Plans[PlanMonthly], Plans[PlanYearly], Plans[PlanLifetime]}
}

// ResolvePlan maps a user-supplied plan string to a known plan id.
// Unrecognized or empty input falls back to monthly; this is deliberate
// policy, not an error path.
func ResolvePlan(requested string) PlanID {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case string(PlanYearly):
		return PlanYearly
	case string(PlanLifetime):
		return PlanLifetime
	default:
		return PlanMonthly
	}
}

// PlanEndDate computes the expiration for a plan started at start.
// Nil means the plan never expires.
func PlanEndDate(start time.Time, plan PlanID) *time.Time {
	p := Plans[plan]
	if p.DurationDays == nil {
		return nil
	}
	end := start.Add(time.Duration(*p.DurationDays) * 24 * time.Hour)
	return &end
}
