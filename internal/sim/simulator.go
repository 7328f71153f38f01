package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/dshills/gluepanel/internal/dashboard"
	"github.com/dshills/gluepanel/internal/event"
	"github.com/dshills/gluepanel/internal/event/topic"
	"github.com/dshills/gluepanel/internal/logging"
)

// cellSim is the simulated state of one glue cell.
type cellSim struct {
	state       string
	weightGrams float64
	glueType    string
	phaseLeft   float64 // seconds remaining in the current phase
}

// Simulator publishes synthetic cell, state, and trajectory events so the
// dashboard can run without a controller. Each cell cycles between idle
// and dispensing, losing weight at its profile rate and swapping to a
// fresh cartridge below the refill threshold. While the application is
// started, the robot traces a lissajous path broken into segments.
type Simulator struct {
	broker   *event.Broker
	profile  Profile
	capacity float64
	tick     time.Duration
	logger   *logging.Logger

	mu       sync.Mutex
	appState dashboard.AppState
	cells    map[int]*cellSim
	elapsed  float64
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithProfile sets the simulation profile.
func WithProfile(p Profile) Option {
	return func(s *Simulator) {
		s.profile = p
	}
}

// WithTick sets the publish cadence.
func WithTick(d time.Duration) Option {
	return func(s *Simulator) {
		s.tick = d
	}
}

// WithCapacity sets the cartridge capacity cells refill to.
func WithCapacity(grams float64) Option {
	return func(s *Simulator) {
		s.capacity = grams
	}
}

// WithLogger sets the simulator's logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Simulator) {
		s.logger = l
	}
}

// New creates a simulator over the broker's topic catalog.
func New(broker *event.Broker, opts ...Option) *Simulator {
	s := &Simulator{
		broker:   broker,
		profile:  DefaultProfile(),
		capacity: 5000,
		tick:     250 * time.Millisecond,
		logger:   logging.Null,
		appState: dashboard.AppStateIdle,
		cells:    make(map[int]*cellSim),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("sim")

	for cell := 1; cell <= broker.Catalog().Cells(); cell++ {
		// Stagger phases so cells do not dispense in lockstep.
		s.cells[cell] = &cellSim{
			state:       "idle",
			weightGrams: s.capacity,
			glueType:    s.profile.GlueType(cell),
			phaseLeft:   s.profile.IdleSeconds * float64(cell) / 2,
		}
	}
	return s
}

// Run publishes simulated events until the context is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.publishInitial(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.step(ctx, s.tick.Seconds())
		}
	}
}

// publishInitial announces the starting state of every cell.
func (s *Simulator) publishInitial(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.publish(ctx, topic.AppState, s.appState)
	for cell, cs := range s.cells {
		s.publishState(ctx, cell, cs, "", "startup")
		s.publish(ctx, topic.CellWeight(cell), cs.weightGrams)
		s.publish(ctx, topic.CellGlueType(cell), cs.glueType)
	}
}

// step advances the simulation by dt seconds and publishes what changed.
func (s *Simulator) step(ctx context.Context, dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed += dt
	s.stepAppState(ctx)

	for cell, cs := range s.cells {
		s.stepCell(ctx, cell, cs, dt)
	}

	if s.appState == dashboard.AppStateStarted {
		s.stepTrajectory(ctx)
	}
}

// stepAppState cycles idle -> started -> idle on a fixed cadence.
func (s *Simulator) stepAppState(ctx context.Context) {
	var next dashboard.AppState
	switch {
	case math.Mod(s.elapsed, 30) < 20:
		next = dashboard.AppStateStarted
	default:
		next = dashboard.AppStateIdle
	}

	if next != s.appState {
		s.appState = next
		s.publish(ctx, topic.AppState, next)
		if next == dashboard.AppStateStarted {
			s.publish(ctx, topic.TrajectoryStart, nil)
		} else {
			s.publish(ctx, topic.TrajectoryStop, nil)
		}
	}
}

// stepCell advances one cell's dispense cycle.
func (s *Simulator) stepCell(ctx context.Context, cell int, cs *cellSim, dt float64) {
	cs.phaseLeft -= dt

	switch cs.state {
	case "idle":
		if cs.phaseLeft <= 0 && s.appState == dashboard.AppStateStarted {
			cs.state = "dispensing"
			cs.phaseLeft = s.profile.DispenseSeconds
			s.publishState(ctx, cell, cs, "idle", "dispense start")
		}
	case "dispensing":
		cs.weightGrams -= s.profile.DispenseRate(cell) * dt
		if cs.weightGrams < 0 {
			cs.weightGrams = 0
		}
		s.publish(ctx, topic.CellWeight(cell), cs.weightGrams)

		if cs.weightGrams <= s.profile.RefillThresholdGrams {
			s.refill(ctx, cell, cs)
		} else if cs.phaseLeft <= 0 {
			cs.state = "idle"
			cs.phaseLeft = s.profile.IdleSeconds
			s.publishState(ctx, cell, cs, "dispensing", "dispense done")
		}
	}
}

// refill simulates a cartridge swap: the cell pauses, gets a full
// cartridge, and resumes idle.
func (s *Simulator) refill(ctx context.Context, cell int, cs *cellSim) {
	cs.state = "refilling"
	s.publishState(ctx, cell, cs, "dispensing", "below refill threshold")

	cs.weightGrams = s.capacity
	cs.glueType = s.profile.GlueType(cell)
	s.publish(ctx, topic.CellWeight(cell), cs.weightGrams)
	s.publish(ctx, topic.CellGlueType(cell), cs.glueType)

	cs.state = "idle"
	cs.phaseLeft = s.profile.IdleSeconds
	s.publishState(ctx, cell, cs, "refilling", "cartridge swapped")
}

// publishState emits the full state-change record for a cell.
func (s *Simulator) publishState(ctx context.Context, cell int, cs *cellSim, prev, reason string) {
	s.publish(ctx, topic.CellState(cell), dashboard.CellStateChange{
		CellID:        cell,
		CurrentState:  cs.state,
		PreviousState: prev,
		Reason:        reason,
		WeightGrams:   cs.weightGrams,
		Timestamp:     time.Now().UnixMilli(),
	})
}

// stepTrajectory emits the next point of a lissajous path, breaking the
// trail at each figure boundary.
func (s *Simulator) stepTrajectory(ctx context.Context) {
	t := s.elapsed
	p := dashboard.Point{
		X: 100 * math.Sin(t),
		Y: 100 * math.Sin(2*t+math.Pi/4),
		Z: 5 * math.Sin(t/3),
	}
	s.publish(ctx, topic.TrajectoryPoint, p)

	period := 2 * math.Pi
	if math.Mod(t, period) < s.tick.Seconds() {
		s.publish(ctx, topic.TrajectoryBreak, nil)
	}
}

func (s *Simulator) publish(ctx context.Context, t topic.Topic, payload any) {
	if err := s.broker.Publish(ctx, t, payload); err != nil {
		s.logger.Warn("publish failed: topic=%s err=%v", t, err)
	}
}

// AppState implements container.StateQuery.
func (s *Simulator) AppState(ctx context.Context) (dashboard.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appState, nil
}

// CellState implements container.StateQuery.
func (s *Simulator) CellState(ctx context.Context, cellID int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok := s.cells[cellID]; ok {
		return cs.state, nil
	}
	return "", nil
}

// CellWeight implements container.WeightQuery.
func (s *Simulator) CellWeight(ctx context.Context, cellID int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok := s.cells[cellID]; ok {
		return cs.weightGrams, nil
	}
	return 0, nil
}

// CellCapacity implements container.CellRegistry.
func (s *Simulator) CellCapacity(cellID int) (float64, error) {
	return s.capacity, nil
}

// CellGlueType implements container.CellRegistry.
func (s *Simulator) CellGlueType(cellID int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok := s.cells[cellID]; ok {
		return cs.glueType, nil
	}
	return "", nil
}

// GlueTypes implements container.CellRegistry.
func (s *Simulator) GlueTypes() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var types []string
	for _, cs := range s.cells {
		if _, ok := seen[cs.glueType]; !ok {
			seen[cs.glueType] = struct{}{}
			types = append(types, cs.glueType)
		}
	}
	return types, nil
}
