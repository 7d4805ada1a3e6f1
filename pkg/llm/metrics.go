package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "arena",
		Subsystem: "llm",
		Name:      "call_duration_seconds",
		Help:      "Duration of provider completion calls",
	}, []string{"provider", "model"})

	callFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "llm",
		Name:      "call_failures_total",
		Help:      "Number of failed provider completion calls",
	}, []string{"provider", "model"})
)
