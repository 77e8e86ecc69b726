package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		flowSessionsStarted,
		flowTransitions,
		flowAdvanceBlocked,
		flowSubmissions,
		flowSubmitLatency,
		flowSessionsSwept,
	)
}

var (
	flowSessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flow_sessions_started_total",
			Help: "Case submission sessions created.",
		},
	)

	flowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_step_transitions_total",
			Help: "Wizard step changes by source and target step.",
		},
		[]string{"from", "to"},
	)

	flowAdvanceBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_advance_blocked_total",
			Help: "Forward moves refused because the current step is incomplete.",
		},
		[]string{"step"},
	)

	flowSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_submissions_total",
			Help: "Submit attempts by result (ok/busy/limited/incomplete/error).",
		},
		[]string{"result"},
	)

	flowSubmitLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flow_submit_duration_seconds",
			Help:    "Wall time of accepted submissions, including the processing delay.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 3, 5, 10},
		},
	)

	flowSessionsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flow_sessions_swept_total",
			Help: "Idle sessions evicted by the sweeper.",
		},
	)
)

func IncFlowStarted() { flowSessionsStarted.Inc() }

func ObserveTransition(from, to int) {
	if from == to {
		return
	}
	flowTransitions.WithLabelValues(strconv.Itoa(from), strconv.Itoa(to)).Inc()
}

func IncAdvanceBlocked(step string) {
	flowAdvanceBlocked.WithLabelValues(norm(step)).Inc()
}

func IncSubmission(result string) {
	flowSubmissions.WithLabelValues(norm(result)).Inc()
}

func ObserveSubmitSeconds(sec float64) { flowSubmitLatency.Observe(sec) }

func IncSessionsSwept(n int) { flowSessionsSwept.Add(float64(n)) }
