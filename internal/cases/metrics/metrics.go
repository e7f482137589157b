package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the cases module.
type Metrics struct {
	OperationDuration *prometheus.HistogramVec
	DSLErrors         *prometheus.CounterVec
	PlanCacheLookups  *prometheus.CounterVec
	CasesCreated      prometheus.Counter
	AmendmentsApplied *prometheus.CounterVec
}

// New creates a new Metrics instance with all cases module metrics registered.
func New() *Metrics {
	return &Metrics{
		OperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kyc_dsl_operation_duration_seconds",
			Help:    "Duration of case service operations",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		DSLErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_dsl_errors_total",
			Help: "DSL failures by pipeline stage",
		}, []string{"stage"}), // stage: "syntax", "compile", "execution"

		PlanCacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_dsl_plan_cache_lookups_total",
			Help: "Compiled plan cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"

		CasesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kyc_dsl_cases_created_total",
			Help: "Total number of cases created",
		}),

		AmendmentsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_dsl_amendments_total",
			Help: "Amendments by type and outcome",
		}, []string{"type", "outcome"}),
	}
}

// ObserveOperation records the duration of a service operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(op string, start time.Time) {
	if m != nil {
		m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) IncrementDSLError(stage string) {
	if m != nil {
		m.DSLErrors.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.PlanCacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementCaseCreated() {
	if m != nil {
		m.CasesCreated.Inc()
	}
}

func (m *Metrics) IncrementAmendment(amendmentType, outcome string) {
	if m != nil {
		m.AmendmentsApplied.WithLabelValues(amendmentType, outcome).Inc()
	}
}
