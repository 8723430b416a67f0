package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TaskOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_task_operations_total",
			Help: "Task store mutations by operation and outcome",
		},
		[]string{"op", "outcome"},
	)
	PersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskboard_persist_failures_total",
			Help: "Write-through failures after an in-memory mutation",
		},
	)
	TasksByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskboard_tasks",
			Help: "Tasks currently held by the store",
		},
		[]string{"state"},
	)
)

const (
	outcomeApplied = "applied"
	outcomeSkipped = "skipped"
	outcomeFailed  = "persist_error"
)

func init() {
	prometheus.MustRegister(TaskOps)
	prometheus.MustRegister(PersistFailures)
	prometheus.MustRegister(TasksByState)
}
