package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NodesAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strgraph_nodes_added_total",
		Help: "Total number of nodes added to graphs, labelled by kind.",
	}, []string{"kind"})

	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strgraph_evaluations_total",
		Help: "Total number of evaluate calls, labelled by status.",
	}, []string{"status"})

	NodesComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "strgraph_nodes_computed_total",
		Help: "Total number of node values computed (cache misses).",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "strgraph_cache_hits_total",
		Help: "Total number of requested targets served straight from the result cache.",
	})

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "strgraph_evaluation_duration_ms",
		Help:    "Evaluate call latency in milliseconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500},
	})

	GraphCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "strgraph_graphs",
		Help: "Current number of graph instances in the store.",
	})
)
