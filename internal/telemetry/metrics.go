package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the Prometheus instruments an operator dashboards
// against: verdict throughput and score distribution, consensus rounds,
// and slashing events.
type Metrics struct {
	VerdictsIssued     prometheus.Counter
	VerdictScore       prometheus.Histogram
	ConsensusRounds    *prometheus.CounterVec
	SlashesApplied     *prometheus.CounterVec
	OraclesRegistered  prometheus.Gauge
}

// NewMetrics registers and returns the service's metric instruments
// against the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		VerdictsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "oracle",
			Name:      "verdicts_issued_total",
			Help:      "Total number of verdicts issued by the verdict service.",
		}),
		VerdictScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "oracle",
			Name:      "verdict_quality_score",
			Help:      "Distribution of issued verdict quality scores.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		ConsensusRounds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oracle",
			Name:      "consensus_rounds_total",
			Help:      "Total consensus rounds, labeled by the fallback strategy applied, \"collusion\" when flagged oracles were slashed, or \"none\".",
		}, []string{"strategy"}),
		SlashesApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oracle",
			Name:      "slashes_applied_total",
			Help:      "Total slash events, labeled by resulting oracle status.",
		}, []string{"status"}),
		OraclesRegistered: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "oracle",
			Name:      "oracles_registered",
			Help:      "Current number of registered oracles.",
		}),
	}
}
