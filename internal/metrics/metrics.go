package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for ledger operations.
type Metrics struct {
	// Calls by operation name and outcome ("ok" or an error code)
	Calls *prometheus.CounterVec

	// Call latency by operation name
	CallDuration *prometheus.HistogramVec

	// Units moved into escrow
	FundsRaised prometheus.Counter

	// Units returned from escrow
	FundsRefunded prometheus.Counter

	// Campaign closures by terminal status
	CampaignsClosed *prometheus.CounterVec
}

// New creates a Metrics instance registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sciledger_calls_total",
			Help: "Total ledger calls by operation and outcome",
		}, []string{"operation", "outcome"}),

		CallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sciledger_call_duration_seconds",
			Help:    "Duration of ledger calls by operation",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		FundsRaised: factory.NewCounter(prometheus.CounterOpts{
			Name: "sciledger_funds_raised_total",
			Help: "Total units contributed to campaign escrow",
		}),

		FundsRefunded: factory.NewCounter(prometheus.CounterOpts{
			Name: "sciledger_funds_refunded_total",
			Help: "Total units refunded from failed campaigns",
		}),

		CampaignsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sciledger_campaigns_closed_total",
			Help: "Total campaigns closed by terminal status",
		}, []string{"status"}),
	}
}

// ObserveCall records one call's outcome and duration.
func (m *Metrics) ObserveCall(operation, outcome string, d time.Duration) {
	if m != nil {
		m.Calls.WithLabelValues(operation, outcome).Inc()
		m.CallDuration.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// AddFundsRaised records a successful contribution.
func (m *Metrics) AddFundsRaised(amount uint64) {
	if m != nil {
		m.FundsRaised.Add(float64(amount))
	}
}

// AddFundsRefunded records a successful refund.
func (m *Metrics) AddFundsRefunded(amount uint64) {
	if m != nil {
		m.FundsRefunded.Add(float64(amount))
	}
}

// IncrementCampaignsClosed records a closure.
func (m *Metrics) IncrementCampaignsClosed(status string) {
	if m != nil {
		m.CampaignsClosed.WithLabelValues(status).Inc()
	}
}
