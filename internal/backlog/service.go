// Package backlog coordinates the planner and the store. Every operation
// runs as one load, mutate, save cycle under a single mutex, and the
// snapshot is only persisted when the whole operation succeeds.
package backlog

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/sprintplan/internal/export"
	"github.com/mesh-intelligence/sprintplan/internal/planner"
	"github.com/mesh-intelligence/sprintplan/internal/store"
	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// PlanRequest parameterizes a re-planning pass.
type PlanRequest struct {
	// TeamCapacity overrides the stored capacity when positive and becomes
	// the new team capacity. Zero plans with the effective capacity.
	TeamCapacity int `json:"team_capacity,omitempty"`

	// NumSprints caps the number of sprints; zero means no limit.
	NumSprints int `json:"num_sprints,omitempty"`
}

// PlanResult is the outcome of Ingest or Plan.
type PlanResult struct {
	Backlog    *types.Backlog     `json:"backlog"`
	Allocation planner.Allocation `json:"allocation"`

	// Capacity is the per-sprint capacity the pass used.
	Capacity int `json:"capacity"`

	// Unassigned lists item ids left out by the sprint limit.
	Unassigned []string `json:"unassigned"`
}

// VelocityResult is the outcome of RecordVelocity.
type VelocityResult struct {
	Backlog *types.Backlog `json:"backlog"`

	// SprintFound is false when the report named a sprint absent from the
	// snapshot. The report is recorded in the history regardless.
	SprintFound bool `json:"sprint_found"`

	// Notice is types.ErrSprintNotFound, wrapped with the sprint number,
	// when SprintFound is false.
	Notice error `json:"-"`
}

// Service serializes access to one backlog.
type Service struct {
	mu      sync.Mutex
	store   store.Store
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics sets the metrics collectors. The default records nothing.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock sets the clock used to stamp export files.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service over st.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backlog returns the current snapshot.
func (s *Service) Backlog() (*types.Backlog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.load()
	if err != nil {
		return nil, err
	}
	s.metrics.observe(b)
	return b, nil
}

// Ingest replaces the backlog with items, ordered and allocated with
// capacity. A zero capacity keeps the stored team capacity. The velocity
// history starts over, as the new items describe a new body of work.
func (s *Service) Ingest(items []types.WorkItem, capacity int) (PlanResult, error) {
	if capacity < 0 {
		return PlanResult{}, fmt.Errorf("ingest with capacity %d: %w", capacity, types.ErrInvalidCapacity)
	}
	if err := validateItems(items); err != nil {
		return PlanResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.load()
	if err != nil {
		return PlanResult{}, err
	}
	if capacity == 0 {
		capacity = prev.TeamCapacity
	}
	if capacity < 1 {
		return PlanResult{}, fmt.Errorf("ingest with stored capacity %d: %w", capacity, types.ErrInvalidCapacity)
	}

	b := types.NewBacklog(s.now().UTC())
	b.TeamCapacity = capacity
	b.UserStories = append([]types.WorkItem(nil), items...)

	result, err := plan(b, capacity, 0)
	if err != nil {
		return PlanResult{}, err
	}
	if err := s.store.Save(b); err != nil {
		return PlanResult{}, fmt.Errorf("save backlog: %w", err)
	}

	s.metrics.recordIngestion()
	s.metrics.observe(b)
	s.log.Info("backlog ingested",
		zap.Int("items", len(b.UserStories)),
		zap.Int("sprints", result.Allocation.TotalSprints),
		zap.Int("points", b.TotalPoints()),
		zap.Int("capacity", capacity),
	)
	return result, nil
}

// Plan re-orders the stored items and re-allocates them into sprints. The
// previous sprint records are replaced.
func (s *Service) Plan(req PlanRequest) (PlanResult, error) {
	if req.TeamCapacity < 0 {
		return PlanResult{}, fmt.Errorf("plan with capacity %d: %w", req.TeamCapacity, types.ErrInvalidCapacity)
	}
	if req.NumSprints < 0 {
		return PlanResult{}, fmt.Errorf("plan with sprint limit %d: %w", req.NumSprints, types.ErrInvalidSprintLimit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.load()
	if err != nil {
		return PlanResult{}, err
	}
	if len(b.UserStories) == 0 {
		return PlanResult{}, types.ErrNoItems
	}

	capacity := b.EffectiveCapacity()
	if req.TeamCapacity > 0 {
		b.TeamCapacity = req.TeamCapacity
		capacity = req.TeamCapacity
	}
	if capacity < 1 {
		return PlanResult{}, fmt.Errorf("plan with stored capacity %d: %w", capacity, types.ErrInvalidCapacity)
	}

	result, err := plan(b, capacity, req.NumSprints)
	if err != nil {
		return PlanResult{}, err
	}
	if err := s.store.Save(b); err != nil {
		return PlanResult{}, fmt.Errorf("save backlog: %w", err)
	}

	s.metrics.recordPlan()
	s.metrics.observe(b)
	s.log.Info("sprints planned",
		zap.Int("items", len(b.UserStories)),
		zap.Int("sprints", result.Allocation.TotalSprints),
		zap.Int("points", result.Allocation.TotalPoints),
		zap.Int("capacity", capacity),
		zap.Int("unassigned", len(result.Unassigned)),
	)
	return result, nil
}

// RecordVelocity applies a completed-sprint report and persists it. It
// never re-plans. A report for an unknown sprint is recorded and flagged in
// the result rather than failing.
func (s *Service) RecordVelocity(r types.VelocityReport) (VelocityResult, error) {
	if err := r.Validate(); err != nil {
		return VelocityResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.load()
	if err != nil {
		return VelocityResult{}, err
	}

	found := planner.ApplyVelocity(b, r)
	if err := s.store.Save(b); err != nil {
		return VelocityResult{}, fmt.Errorf("save backlog: %w", err)
	}

	s.metrics.recordVelocity(found)
	s.metrics.observe(b)

	result := VelocityResult{Backlog: b, SprintFound: found}
	fields := []zap.Field{
		zap.Int("sprint", r.SprintNumber),
		zap.Int("completed", r.CompletedPoints),
		zap.Float64("velocity", *b.CurrentVelocity),
		zap.Int("capacity", b.TeamCapacity),
	}
	if r.Feedback != "" {
		fields = append(fields, zap.String("feedback", r.Feedback))
	}
	if !found {
		result.Notice = fmt.Errorf("sprint %d: %w", r.SprintNumber, types.ErrSprintNotFound)
		s.log.Warn("velocity recorded for unknown sprint", fields...)
	} else {
		s.log.Info("velocity recorded", fields...)
	}
	return result, nil
}

// Clear deletes the stored snapshot.
func (s *Service) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear backlog: %w", err)
	}
	if b, err := s.store.Load(); err == nil {
		s.metrics.observe(b)
	}
	s.log.Info("backlog cleared")
	return nil
}

// UnresolvedDependencies reports dependency ids that name no stored item.
func (s *Service) UnresolvedDependencies() ([]planner.UnresolvedDependency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.load()
	if err != nil {
		return nil, err
	}
	return planner.UnresolvedDependencies(b.UserStories), nil
}

// Export writes the snapshot in format f to dir and returns the file path.
func (s *Service) Export(f export.Format, dir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.load()
	if err != nil {
		return "", err
	}
	if len(b.UserStories) == 0 {
		return "", types.ErrNoItems
	}

	path, err := export.WriteFile(dir, f, b, s.now())
	if err != nil {
		return "", err
	}

	s.metrics.recordExport(string(f))
	s.log.Info("backlog exported", zap.String("format", string(f)), zap.String("path", path))
	return path, nil
}

func (s *Service) load() (*types.Backlog, error) {
	b, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load backlog: %w", err)
	}
	return b, nil
}

// plan orders b's items, clears their previous assignments, and allocates
// them into fresh sprints.
func plan(b *types.Backlog, capacity, maxSprints int) (PlanResult, error) {
	ordered := planner.Order(b.UserStories)
	for i := range ordered {
		ordered[i].SprintAssigned = nil
	}

	alloc, err := planner.Allocate(ordered, capacity, maxSprints)
	if err != nil {
		return PlanResult{}, err
	}

	b.UserStories = ordered
	b.Sprints = alloc.Sprints

	unassigned := []string{}
	for _, item := range ordered {
		if item.SprintAssigned == nil {
			unassigned = append(unassigned, item.ID)
		}
	}
	return PlanResult{Backlog: b, Allocation: alloc, Capacity: capacity, Unassigned: unassigned}, nil
}

// validateItems applies the stored-snapshot rules to incoming items. The
// stricter ingestion rules live in internal/ingest.
func validateItems(items []types.WorkItem) error {
	probe := types.Backlog{TeamCapacity: types.DefaultTeamCapacity, UserStories: items}
	return probe.Validate()
}
