package metrics

import (
	"context"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gokatarajesh/quizflow/internal/quiz"
)

const namespace = "quizflow"

// Validation outcomes.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeFatal   = "fatal"
)

// Metrics holds the service counters. It satisfies quiz.Observer,
// catalog.ReportObserver and session.Recorder.
type Metrics struct {
	decisions   *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	started     prometheus.Counter
	completed   prometheus.Counter
	reports     *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigation_decisions_total",
			Help:      "Forward navigation steps by how they were decided.",
		}, []string{"kind"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigation_diagnostics_total",
			Help:      "Routing failures that fell back to sequential navigation.",
		}, []string{"code"}),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Player sessions started.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Player sessions completed.",
		}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_reports_total",
			Help:      "Quiz validation reports by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.decisions, m.diagnostics, m.started, m.completed, m.reports} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveDecision(d quiz.Decision) {
	m.decisions.WithLabelValues(string(d)).Inc()
}

func (m *Metrics) ObserveDiagnostic(d quiz.Diagnostic) {
	m.diagnostics.WithLabelValues(string(d.Code)).Inc()
}

// ObserveReport counts one validation report.
func (m *Metrics) ObserveReport(r quiz.Report) {
	outcome := OutcomeValid
	switch {
	case r.Fatal:
		outcome = OutcomeFatal
	case !r.Valid():
		outcome = OutcomeInvalid
	}
	m.reports.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionStarted(context.Context, uuid.UUID) {
	m.started.Inc()
}

func (m *Metrics) SessionCompleted(context.Context, uuid.UUID, string) {
	m.completed.Inc()
}
