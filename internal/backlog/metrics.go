package backlog

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// Metrics holds the Prometheus collectors updated by the Service.
//
// Metrics:
//   - sprintplan_ingestions_total - backlogs replaced from producer output
//   - sprintplan_plans_total - re-planning passes
//   - sprintplan_velocity_reports_total{sprint_found} - velocity reports recorded
//   - sprintplan_exports_total{format} - export files written
//   - sprintplan_backlog_items - work items in the last saved snapshot
//   - sprintplan_backlog_sprints - sprints in the last saved snapshot
//   - sprintplan_team_capacity - team capacity in story points
//   - sprintplan_current_velocity - rolling velocity, 0 before the first report
type Metrics struct {
	IngestionsTotal      prometheus.Counter
	PlansTotal           prometheus.Counter
	VelocityReportsTotal *prometheus.CounterVec
	ExportsTotal         *prometheus.CounterVec

	Items           prometheus.Gauge
	Sprints         prometheus.Gauge
	TeamCapacity    prometheus.Gauge
	CurrentVelocity prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered, which tests use to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IngestionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sprintplan_ingestions_total",
			Help: "Total number of backlogs replaced from ingested work items",
		}),
		PlansTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sprintplan_plans_total",
			Help: "Total number of sprint planning passes",
		}),
		VelocityReportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sprintplan_velocity_reports_total",
			Help: "Total number of velocity reports recorded",
		}, []string{"sprint_found"}),
		ExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sprintplan_exports_total",
			Help: "Total number of export files written",
		}, []string{"format"}),
		Items: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sprintplan_backlog_items",
			Help: "Number of work items in the backlog",
		}),
		Sprints: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sprintplan_backlog_sprints",
			Help: "Number of planned sprints in the backlog",
		}),
		TeamCapacity: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sprintplan_team_capacity",
			Help: "Team capacity in story points per sprint",
		}),
		CurrentVelocity: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sprintplan_current_velocity",
			Help: "Rolling average of completed story points per sprint",
		}),
	}
}

// observe sets the gauges from a snapshot.
func (m *Metrics) observe(b *types.Backlog) {
	if m == nil {
		return
	}
	m.Items.Set(float64(len(b.UserStories)))
	m.Sprints.Set(float64(len(b.Sprints)))
	m.TeamCapacity.Set(float64(b.TeamCapacity))
	if b.CurrentVelocity != nil {
		m.CurrentVelocity.Set(*b.CurrentVelocity)
	} else {
		m.CurrentVelocity.Set(0)
	}
}

func (m *Metrics) recordIngestion() {
	if m != nil {
		m.IngestionsTotal.Inc()
	}
}

func (m *Metrics) recordPlan() {
	if m != nil {
		m.PlansTotal.Inc()
	}
}

func (m *Metrics) recordVelocity(found bool) {
	if m != nil {
		m.VelocityReportsTotal.WithLabelValues(strconv.FormatBool(found)).Inc()
	}
}

func (m *Metrics) recordExport(format string) {
	if m != nil {
		m.ExportsTotal.WithLabelValues(format).Inc()
	}
}
