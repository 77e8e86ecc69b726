package metrics

import (
	"case-portal/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(casesTotal, caseStatusChanges)
}

var (
	casesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cases_total",
			Help: "Current number of cases by status.",
		},
		[]string{"status"},
	)

	caseStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_status_changes_total",
			Help: "Admin status updates by target status.",
		},
		[]string{"status"},
	)
)

func SetCasesTotal(counts map[model.CaseStatus]int) {
	for _, status := range model.CaseStatuses() {
		casesTotal.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}

func IncCaseStatusChange(status model.CaseStatus) {
	caseStatusChanges.WithLabelValues(string(status)).Inc()
}
