// Package metrics 提供 Prometheus 指标采集功能
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "clive"
)

var (
	// 管线阶段指标
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_failures_total",
			Help:      "Total number of failed pipeline stages",
		},
		[]string{"stage"},
	)

	// 转写指标
	TracksExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transcript",
			Name:      "tracks_extracted_total",
			Help:      "Total number of audio tracks extracted",
		},
	)

	UnitsReconstructed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transcript",
			Name:      "units_reconstructed_total",
			Help:      "Total number of timestamped units reconstructed",
		},
	)

	TokensSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transcript",
			Name:      "tokens_skipped_total",
			Help:      "Total number of skipped ASR tokens",
		},
		[]string{"reason"},
	)

	// 检索指标
	EmbeddingsComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "embeddings_computed_total",
			Help:      "Total number of embedding vectors computed",
		},
	)

	SemanticQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "semantic_queries_total",
			Help:      "Total number of semantic index queries",
		},
	)

	// 剪辑指标
	ClipsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clips",
			Name:      "emitted_total",
			Help:      "Total number of merged clips emitted",
		},
	)

	ClipsCut = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clips",
			Name:      "cut_total",
			Help:      "Total number of clip files written by the media cutter",
		},
	)
)
