package loop

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	_TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tempo",
		Subsystem: "loop",
		Name:      "ticks_total",
		Help:      "Number of frames advanced by all loops.",
	})
	_TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tempo",
		Subsystem: "loop",
		Name:      "tick_duration_seconds",
		Help:      "Wall time spent inside one frame.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
	})
)
