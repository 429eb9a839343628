// Package metrics exposes Prometheus instrumentation for the workflow and
// the HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "perfumery"

// Outcome labels shared by the counters below.
const (
	OutcomeOK           = "ok"
	OutcomeInsufficient = "insufficient_stock"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)

var (
	// formulationsCreated counts create attempts. Labels: outcome.
	formulationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "formulation",
		Name:      "created_total",
		Help:      "Formulation create attempts by outcome",
	}, []string{"outcome"})

	// lifecycleTransitions counts committed status changes. Labels: from, to.
	lifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "formulation",
		Name:      "transitions_total",
		Help:      "Committed formulation status transitions",
	}, []string{"from", "to"})

	// stockReservations counts ledger reservations. Labels: outcome.
	stockReservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "reservations_total",
		Help:      "Stock reservation attempts by outcome",
	}, []string{"outcome"})

	// stockMovements counts audit rows written. Labels: kind.
	stockMovements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "movements_total",
		Help:      "Stock movements recorded by kind",
	}, []string{"kind"})

	// complianceEvaluations counts checker runs. Labels: result.
	complianceEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "compliance",
		Name:      "evaluations_total",
		Help:      "Compliance evaluations by result",
	}, []string{"result"})

	// qaDecisions counts QA notes recorded. Labels: status.
	qaDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "qa",
		Name:      "decisions_total",
		Help:      "QA test results recorded by status",
	}, []string{"status"})

	// httpDuration measures request latency. Labels: method, route, code.
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "route", "code"})
)

func FormulationCreated(outcome string) {
	formulationsCreated.WithLabelValues(outcome).Inc()
}

func Transition(from, to string) {
	lifecycleTransitions.WithLabelValues(from, to).Inc()
}

func Reservation(outcome string) {
	stockReservations.WithLabelValues(outcome).Inc()
}

func Movement(kind string) {
	stockMovements.WithLabelValues(kind).Inc()
}

func ComplianceEvaluated(result string) {
	complianceEvaluations.WithLabelValues(result).Inc()
}

func QADecision(status string) {
	qaDecisions.WithLabelValues(status).Inc()
}

// ObserveRequest records one served request.
func ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
