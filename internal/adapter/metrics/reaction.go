package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReactionMetrics covers the reaction -> transfer pipeline.
type ReactionMetrics struct {
	Processed          *prometheus.CounterVec
	ProcessingDuration prometheus.Histogram
	InFlight           prometheus.Gauge
	Dropped            prometheus.Counter
	KudosTransferred   prometheus.Counter
}

func NewReactionMetrics(reg prometheus.Registerer) *ReactionMetrics {
	m := &ReactionMetrics{
		Processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reactions_processed_total",
			Help:      "Total number of reaction events processed, by outcome.",
		}, []string{"outcome"}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reactions_processing_duration_seconds",
			Help:      "Duration of reaction processing in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reactions_in_flight",
			Help:      "Number of reaction events currently being processed.",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reactions_dropped_total",
			Help:      "Reaction events dropped before processing (shutdown or message fetch failure).",
		}),
		KudosTransferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transferred_total",
			Help:      "Total kudos moved by successful transfers.",
		}),
	}

	reg.MustRegister(m.Processed, m.ProcessingDuration, m.InFlight, m.Dropped, m.KudosTransferred)
	return m
}

// NotificationMetrics tracks direct message delivery.
type NotificationMetrics struct {
	Sent   prometheus.Counter
	Failed *prometheus.CounterVec
}

func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	m := &NotificationMetrics{
		Sent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total direct messages delivered.",
		}),
		Failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Total direct messages that could not be delivered, by stage.",
		}, []string{"stage"}),
	}

	reg.MustRegister(m.Sent, m.Failed)
	return m
}
