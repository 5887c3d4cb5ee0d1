package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"trading-signal-subscription/internal/domain/model"
)

func init() {
	register(
		subscriptionsExpiredTotal,
		subscriptionsTotal,
		trialsGrantedTotal,
	)
}

var (
	subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Total number of subscriptions moved to EXPIRED by the sweep.",
		},
	)

	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of subscriptions by status.",
		},
		[]string{"status"},
	)

	trialsGrantedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trials_granted_total",
			Help: "Total number of one-time trials granted by admins.",
		},
	)
)

func IncSubscriptionsExpired(count int) {
	subscriptionsExpiredTotal.Add(float64(count))
}

func IncTrialGranted() {
	trialsGrantedTotal.Inc()
}

func SetSubscriptionsTotal(counts map[model.SubscriptionStatus]int) {
	statuses := []model.SubscriptionStatus{
		model.SubscriptionStatusPendingApproval,
		model.SubscriptionStatusTrial,
		model.SubscriptionStatusActive,
		model.SubscriptionStatusExpired,
	}
	for _, status := range statuses {
		if count, ok := counts[status]; ok {
			subscriptionsTotal.WithLabelValues(string(status)).Set(float64(count))
		}
	}
}
