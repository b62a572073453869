package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain metrics exposed on /metrics together with the HTTP metrics
var (
	casesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pqr_cases_created_total",
			Help: "Number of PQR cases filed, by case type",
		},
		[]string{"case_type"},
	)

	caseNumberConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pqr_case_number_conflicts_total",
			Help: "Case number allocations retried after a duplicate key or lock conflict",
		},
	)

	voucherFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pqr_voucher_failures_total",
			Help: "Voucher generations that failed after the case mutation was committed",
		},
	)

	securityAlertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pqr_security_alerts_total",
			Help: "Alerts raised for repeated failed logins from one address",
		},
	)
)
