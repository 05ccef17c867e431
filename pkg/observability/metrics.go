package observability

import (
	"context"

	"github.com/aretw0/voyage/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the planning counters and histograms.
type Metrics struct {
	StageTransitions     *prometheus.CounterVec
	CollaboratorDuration *prometheus.HistogramVec
	BudgetAlerts         prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StageTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voyage_stage_transitions_total",
				Help: "Total number of stage entries",
			},
			[]string{"stage"},
		),
		CollaboratorDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voyage_collaborator_duration_seconds",
				Help:    "Duration of external collaborator calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"collaborator", "outcome"},
		),
		BudgetAlerts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "voyage_budget_alerts_total",
				Help: "Total number of plans that exceeded the trip budget",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.StageTransitions, m.CollaboratorDuration, m.BudgetAlerts)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			m.StageTransitions.WithLabelValues(string(e.Stage)).Inc()
		},
		OnCollaboratorReturn: func(ctx context.Context, e *domain.CollaboratorEvent) {
			m.CollaboratorDuration.WithLabelValues(e.Collaborator, e.Outcome).Observe(e.Duration.Seconds())
		},
		OnBudgetAlert: func(ctx context.Context, e *domain.BudgetAlertEvent) {
			m.BudgetAlerts.Inc()
		},
	}
}
