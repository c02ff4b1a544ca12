package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	_TasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tempo",
		Subsystem: "tracker",
		Name:      "tasks_total",
		Help:      "Tracked task lifecycle events.",
	}, []string{"event"})
	_CallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tempo",
		Subsystem: "tracker",
		Name:      "calls_total",
		Help:      "Deferred call lifecycle events.",
	}, []string{"event"})
	_TasksLive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tempo",
		Subsystem: "tracker",
		Name:      "tasks_live",
		Help:      "Tracked tasks currently registered, per tracker.",
	}, []string{"tracker"})
	_CallsLive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tempo",
		Subsystem: "tracker",
		Name:      "calls_live",
		Help:      "Deferred calls currently registered, per tracker.",
	}, []string{"tracker"})
)

const (
	evtStarted   = "started"
	evtCompleted = "completed"
	evtStopped   = "stopped"
	evtAdded     = "added"
	evtFired     = "fired"
	evtCancelled = "cancelled"
)
