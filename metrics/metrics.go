package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ico_orders_created_total", Help: "Orders submitted"},
	)
	SettlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ico_settlements_total", Help: "Settlement runs by outcome"},
		[]string{"outcome"},
	)
	VerificationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ico_verification_failures_total", Help: "USDT verification failures"},
	)
	ReferralsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ico_referrals_created_total", Help: "Referral reward records created"},
	)
	SettlementDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "ico_settlement_duration_seconds", Help: "Settlement run duration", Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30}},
	)
	PendingRescanTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ico_pending_rescan_total", Help: "Orders re-enqueued by startup rescan"},
	)
)

func MustRegister() {
	prometheus.MustRegister(
		OrdersCreatedTotal,
		SettlementsTotal,
		VerificationFailuresTotal,
		ReferralsCreatedTotal,
		SettlementDuration,
		PendingRescanTotal,
	)
}

func IncSettlement(outcome string) { SettlementsTotal.WithLabelValues(outcome).Inc() }
