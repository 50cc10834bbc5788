package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNotifyMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewNotifyMetrics(reg)
	m.ObserveDelivery("email", "booking", "sent")
	m.ObserveRecord("booking", "written")
	m.ObserveLatency("booking", 0.2)
}

func TestNotifyMetricsNilSafe(t *testing.T) {
	var m *NotifyMetrics
	m.ObserveDelivery("sms", "call_back", "failed")
	m.ObserveRecord("call_back", "failed")
	m.ObserveLatency("call_back", 0.1)
}
