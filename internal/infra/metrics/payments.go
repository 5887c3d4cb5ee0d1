package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		claimsTotal,
		claimsRevenueCents,
	)
}

var (
	claimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_claims_total",
			Help: "Payment claims by outcome (submitted/approved/rejected).",
		},
		[]string{"outcome"},
	)

	claimsRevenueCents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_claims_revenue_cents_total",
			Help: "Total value of approved payment claims, in cents.",
		},
	)
)

func IncClaim(outcome string) {
	claimsTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddClaimRevenue(amountCents int64) {
	claimsRevenueCents.Add(float64(amountCents))
}
