package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "candidate_scorer",
		Name:      "stage_outcomes_total",
		Help:      "Pipeline stage outcomes by stage and outcome.",
	}, []string{"stage", "outcome"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "candidate_scorer",
		Name:      "stage_duration_seconds",
		Help:      "Duration of each pipeline stage.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"stage"})

	pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "candidate_scorer",
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of a full scoring request.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"result"})

	cacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "candidate_scorer",
		Name:      "llm_cache_events_total",
		Help:      "Generation cache hits, misses, writes and io errors.",
	}, []string{"event"})

	verifierCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "candidate_scorer",
		Name:      "verifier_calls_total",
		Help:      "Profile verifier calls by platform and result.",
	}, []string{"platform", "result"})
)
