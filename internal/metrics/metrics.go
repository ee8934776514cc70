// Package metrics holds the Prometheus collectors exported by quizgen.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once
	workflowRuns *prometheus.CounterVec
	llmDuration  *prometheus.HistogramVec
)

// Register initialises the collectors. It is safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		workflowRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizgen_workflow_runs_total",
			Help: "Workflow runs by flow and terminal outcome.",
		}, []string{"flow", "outcome"})

		llmDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quizgen_llm_request_duration_seconds",
			Help:    "Latency of text-generation calls.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"provider", "outcome"})

		prometheus.MustRegister(workflowRuns, llmDuration)
	})
}

// WorkflowRuns exposes the workflow run counter.
func WorkflowRuns() *prometheus.CounterVec {
	Register()
	return workflowRuns
}

// LLMDuration exposes the text-generation latency histogram.
func LLMDuration() *prometheus.HistogramVec {
	Register()
	return llmDuration
}

// Handler serves the default registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
