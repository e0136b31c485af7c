package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ledger outcome labels.
const (
	OutcomeSuccess         = "success"
	OutcomeAlreadyReported = "already_reported"
	OutcomeNotFound        = "not_found"
	OutcomeAlreadyUsed     = "already_used"
	OutcomeOutOfStock      = "out_of_stock"
	OutcomeRejected        = "rejected"
	OutcomeError           = "error"
)

// LedgerMetrics counts voucher grant and redemption outcomes.
type LedgerMetrics struct {
	grants         *prometheus.CounterVec
	redemptions    *prometheus.CounterVec
	redeemDuration *prometheus.HistogramVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	grants := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voucher_grants_total",
		Help: "Voucher grant attempts by outcome.",
	}, []string{"outcome"})
	redemptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voucher_redemptions_total",
		Help: "Voucher redemption attempts by outcome.",
	}, []string{"outcome"})
	redeemDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voucher_redeem_duration_seconds",
		Help:    "Duration of the redemption transaction in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(grants, redemptions, redeemDuration)
	return &LedgerMetrics{
		grants:         grants,
		redemptions:    redemptions,
		redeemDuration: redeemDuration,
	}
}

// IncGrant increments the grant counter for outcome.
func (m *LedgerMetrics) IncGrant(outcome string) {
	if m == nil || m.grants == nil {
		return
	}
	m.grants.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveRedeem records one redemption attempt and how long it took.
func (m *LedgerMetrics) ObserveRedeem(outcome string, duration time.Duration) {
	if m == nil || m.redemptions == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.redemptions.WithLabelValues(outcome).Inc()
	m.redeemDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
