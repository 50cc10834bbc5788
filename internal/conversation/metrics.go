package conversation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var turnLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "frontdesk",
		Subsystem: "conversation",
		Name:      "turn_latency_seconds",
		Help:      "End-to-end latency of one conversational turn.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"state"},
)

var llmLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "frontdesk",
		Subsystem: "conversation",
		Name:      "llm_latency_seconds",
		Help:      "Latency of LLM completions by purpose.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
	},
	[]string{"model", "purpose", "status"},
)

var llmTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "frontdesk",
		Subsystem: "conversation",
		Name:      "llm_tokens_total",
		Help:      "Token usage by direction.",
	},
	[]string{"model", "direction"},
)

var intentTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "frontdesk",
		Subsystem: "conversation",
		Name:      "intent_total",
		Help:      "Classifier outcomes by intent.",
	},
	[]string{"intent", "source"},
)

var commitOutcomeTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "frontdesk",
		Subsystem: "conversation",
		Name:      "booking_commit_total",
		Help:      "Booking commit attempts by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(turnLatency)
	prometheus.MustRegister(llmLatency)
	prometheus.MustRegister(llmTokensTotal)
	prometheus.MustRegister(intentTotal)
	prometheus.MustRegister(commitOutcomeTotal)
}

func observeLLMUsage(model string, usage TokenUsage) {
	if usage.InputTokens > 0 {
		llmTokensTotal.WithLabelValues(model, "input").Add(float64(usage.InputTokens))
	}
	if usage.OutputTokens > 0 {
		llmTokensTotal.WithLabelValues(model, "output").Add(float64(usage.OutputTokens))
	}
	if usage.TotalTokens > 0 {
		llmTokensTotal.WithLabelValues(model, "total").Add(float64(usage.TotalTokens))
	}
}
