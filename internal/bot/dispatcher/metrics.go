package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "modreport"

// Metrics counts dispatcher activity.
type Metrics struct {
	ReportsSubmitted   prometheus.Counter
	ReportsCancelled   prometheus.Counter
	ReviewActions      *prometheus.CounterVec
	MessagesForwarded  prometheus.Counter
	ClassifierFailures prometheus.Counter
	GatewayFailures    *prometheus.CounterVec
}

// NewMetrics registers the dispatcher counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ReportsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reports_submitted_total",
			Help:      "Reports delivered to a moderator channel.",
		}),
		ReportsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reports_cancelled_total",
			Help:      "Reports cancelled by the reporter.",
		}),
		ReviewActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "review_actions_total",
			Help:      "Moderator review actions applied, by stage and action.",
		}, []string{"stage", "action"}),
		MessagesForwarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_forwarded_total",
			Help:      "Monitored channel messages forwarded to moderators.",
		}),
		ClassifierFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "classifier_failures_total",
			Help:      "Classifier calls that failed and fell back to raw text.",
		}),
		GatewayFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "gateway_failures_total",
			Help:      "Gateway calls that failed, by operation.",
		}, []string{"operation"}),
	}
}
