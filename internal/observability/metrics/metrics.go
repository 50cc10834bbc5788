package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotifyMetrics exposes counters/histograms for notification delivery.
type NotifyMetrics struct {
	deliveryTotal   *prometheus.CounterVec
	recordTotal     *prometheus.CounterVec
	deliveryLatency *prometheus.HistogramVec
}

func NewNotifyMetrics(reg prometheus.Registerer) *NotifyMetrics {
	m := &NotifyMetrics{
		deliveryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "notify",
			Name:      "delivery_total",
			Help:      "Total notification channel deliveries",
		}, []string{"channel", "category", "status"}),
		recordTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "notify",
			Name:      "record_total",
			Help:      "Total notification records persisted",
		}, []string{"category", "status"}),
		deliveryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "frontdesk",
			Subsystem: "notify",
			Name:      "delivery_latency_seconds",
			Help:      "Latency of a full notification fan-out",
			Buckets:   prometheus.DefBuckets,
		}, []string{"category"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.deliveryTotal, m.recordTotal, m.deliveryLatency)
	return m
}

func (m *NotifyMetrics) ObserveDelivery(channel, category, status string) {
	if m == nil {
		return
	}
	m.deliveryTotal.WithLabelValues(channel, category, status).Inc()
}

func (m *NotifyMetrics) ObserveRecord(category, status string) {
	if m == nil {
		return
	}
	m.recordTotal.WithLabelValues(category, status).Inc()
}

func (m *NotifyMetrics) ObserveLatency(category string, seconds float64) {
	if m == nil {
		return
	}
	m.deliveryLatency.WithLabelValues(category).Observe(seconds)
}
