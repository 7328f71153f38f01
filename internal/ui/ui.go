package ui

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gluepanel/internal/container"
	"github.com/dshills/gluepanel/internal/dashboard"
	"github.com/dshills/gluepanel/internal/logging"
)

// UI is the terminal implementation of the presentation facade. Facade
// calls mutate state under a mutex and mark the screen dirty; a render
// loop in Run repaints on its own cadence, so event storms never redraw
// faster than the refresh interval.
type UI struct {
	screen       tcell.Screen
	theme        Theme
	logger       *logging.Logger
	refresh      time.Duration
	lowThreshold float64
	cellCount    int
	deps         *container.Container

	mu           sync.Mutex
	cells        map[int]dashboard.CellStateRecord
	capacityDone map[int]bool
	selected     int
	appState     dashboard.AppState
	controls     dashboard.ControlConfig
	actions      dashboard.Actions
	trail        *Trail
	backdrop     *dashboard.Image
	drawing      bool

	dirty chan struct{}
	quit  chan struct{}
}

var _ dashboard.Facade = (*UI)(nil)

// Option configures a UI.
type Option func(*UI)

// WithScreen injects a screen. Used by tests with tcell's simulation
// screen; production creates its own.
func WithScreen(s tcell.Screen) Option {
	return func(u *UI) {
		u.screen = s
	}
}

// WithTheme sets the color theme.
func WithTheme(t Theme) Option {
	return func(u *UI) {
		u.theme = t
	}
}

// WithRefreshInterval sets the minimum repaint interval.
func WithRefreshInterval(d time.Duration) Option {
	return func(u *UI) {
		u.refresh = d
	}
}

// WithTrailLength caps the trajectory trail point count.
func WithTrailLength(n int) Option {
	return func(u *UI) {
		u.trail = NewTrail(n)
	}
}

// WithDrawing sets whether trajectory drawing starts enabled. It can be
// toggled at runtime through the facade.
func WithDrawing(enabled bool) Option {
	return func(u *UI) {
		u.drawing = enabled
	}
}

// WithLowThreshold sets the fill percentage under which a meter renders
// in the warning color.
func WithLowThreshold(pct float64) Option {
	return func(u *UI) {
		u.lowThreshold = pct
	}
}

// WithUILogger sets the UI's logger.
func WithUILogger(l *logging.Logger) Option {
	return func(u *UI) {
		u.logger = l
	}
}

// New creates a terminal UI for cellCount glue cells. Cartridge
// capacities come from the container.
func New(cellCount int, deps *container.Container, opts ...Option) (*UI, error) {
	u := &UI{
		theme:        DarkTheme(),
		logger:       logging.Null,
		refresh:      100 * time.Millisecond,
		lowThreshold: 15,
		cellCount:    cellCount,
		deps:         deps,
		cells:        make(map[int]dashboard.CellStateRecord),
		capacityDone: make(map[int]bool),
		selected:     1,
		appState:     dashboard.AppStateInitializing,
		trail:        NewTrail(500),
		drawing:      true,
		dirty:        make(chan struct{}, 1),
		quit:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.WithComponent("ui")

	if u.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, err
		}
		u.screen = screen
	}

	for cell := 1; cell <= cellCount; cell++ {
		u.cells[cell] = dashboard.CellStateRecord{
			CellID:        cell,
			CapacityGrams: deps.CellCapacity(cell),
		}
		u.capacityDone[cell] = true
	}
	return u, nil
}

// Run initializes the screen and repaints until the context is cancelled
// or the quit control fires. It owns the terminal for its lifetime.
func (u *UI) Run(ctx context.Context) error {
	if err := u.screen.Init(); err != nil {
		return err
	}
	defer u.screen.Fini()

	events := make(chan tcell.Event, 64)
	go u.pollEvents(events)

	ticker := time.NewTicker(u.refresh)
	defer ticker.Stop()

	u.render()

	needsPaint := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-u.quit:
			return nil
		case <-u.dirty:
			needsPaint = true
		case <-ticker.C:
			if needsPaint {
				needsPaint = false
				u.render()
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			u.handleEvent(ev)
		}
	}
}

// pollEvents forwards screen events until the screen is finalized.
func (u *UI) pollEvents(events chan<- tcell.Event) {
	defer close(events)
	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-u.quit:
			return
		}
	}
}

// handleEvent processes one terminal event.
func (u *UI) handleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		u.screen.Sync()
		u.render()
	case *tcell.EventKey:
		u.handleKey(e)
	}
}

// handleKey maps key presses to bound actions. Controls disabled by the
// current control configuration are ignored.
func (u *UI) handleKey(e *tcell.EventKey) {
	u.mu.Lock()
	actions := u.actions
	controls := u.controls
	u.mu.Unlock()

	if e.Key() == tcell.KeyCtrlC || e.Key() == tcell.KeyEscape {
		u.requestQuit(actions)
		return
	}
	if e.Key() != tcell.KeyRune {
		return
	}

	switch e.Rune() {
	case 'q':
		u.requestQuit(actions)
	case 's':
		if controls.StartEnabled {
			invoke(actions.Start)
		}
	case 'x':
		if controls.StopEnabled {
			invoke(actions.Stop)
		}
	case 'p':
		if controls.PauseEnabled {
			invoke(actions.Pause)
		}
	case 'c':
		if controls.CalibrateEnabled {
			invoke(actions.Calibrate)
		}
	case 'n':
		if controls.CleanEnabled {
			invoke(actions.Clean)
		}
	case 'r':
		if controls.ResetEnabled {
			invoke(actions.ResetErrors)
		}
	case 'm':
		invoke(actions.ToggleMode)
	case 'g':
		u.cycleGlueType(actions)
	default:
		if r := e.Rune(); r >= '1' && r <= '9' {
			u.selectCell(int(r - '0'))
		}
	}
}

// selectCell moves the selection highlight. Out-of-range digits are
// ignored.
func (u *UI) selectCell(cell int) {
	if cell < 1 || cell > u.cellCount {
		return
	}
	u.mu.Lock()
	u.selected = cell
	u.mu.Unlock()
	u.markDirty()
}

// cycleGlueType requests the next known glue type for the selected cell.
// Nothing changes locally; the confirmed value arrives back through the
// cell's glue-type topic.
func (u *UI) cycleGlueType(actions dashboard.Actions) {
	if actions.ChangeGlueType == nil {
		return
	}
	types := u.deps.AllGlueTypes()
	if len(types) == 0 {
		return
	}

	u.mu.Lock()
	cell := u.selected
	current := u.cells[cell].GlueType
	u.mu.Unlock()

	next := types[0]
	for i, gt := range types {
		if gt == current {
			next = types[(i+1)%len(types)]
			break
		}
	}
	actions.ChangeGlueType(cell, next)
}

func (u *UI) requestQuit(actions dashboard.Actions) {
	invoke(actions.Quit)
	select {
	case <-u.quit:
	default:
		close(u.quit)
	}
}

func invoke(a dashboard.Action) {
	if a != nil {
		a()
	}
}

// markDirty requests a repaint on the next refresh tick.
func (u *UI) markDirty() {
	select {
	case u.dirty <- struct{}{}:
	default:
	}
}

// SetCellWeight implements dashboard.Facade.
func (u *UI) SetCellWeight(cellID int, grams float64) {
	u.mu.Lock()
	rec := u.cells[cellID]
	rec.CellID = cellID
	rec.WeightGrams = grams
	// Capacity is queried at most once per cell; the lookup can be an
	// RPC and must stay out of the dispatch path after that.
	if !u.capacityDone[cellID] {
		u.capacityDone[cellID] = true
		rec.CapacityGrams = u.deps.CellCapacity(cellID)
	}
	u.cells[cellID] = rec
	u.mu.Unlock()
	u.markDirty()
}

// SetCellState implements dashboard.Facade.
func (u *UI) SetCellState(cellID int, state string) {
	u.mu.Lock()
	rec := u.cells[cellID]
	rec.CellID = cellID
	rec.State = state
	u.cells[cellID] = rec
	u.mu.Unlock()
	u.markDirty()
}

// SetCellGlueType implements dashboard.Facade.
func (u *UI) SetCellGlueType(cellID int, glueType string) {
	u.mu.Lock()
	rec := u.cells[cellID]
	rec.CellID = cellID
	rec.GlueType = glueType
	u.cells[cellID] = rec
	u.mu.Unlock()
	u.markDirty()
}

// SetAppState implements dashboard.Facade.
func (u *UI) SetAppState(state dashboard.AppState) {
	u.mu.Lock()
	u.appState = state
	u.mu.Unlock()
	u.markDirty()
}

// SetTrajectoryImage implements dashboard.Facade.
func (u *UI) SetTrajectoryImage(img dashboard.Image) {
	u.mu.Lock()
	u.backdrop = &img
	u.mu.Unlock()
	u.markDirty()
}

// UpdateTrajectoryPoint implements dashboard.Facade.
func (u *UI) UpdateTrajectoryPoint(p dashboard.Point) {
	u.mu.Lock()
	if u.drawing {
		u.trail.Add(p)
	}
	u.mu.Unlock()
	u.markDirty()
}

// BreakTrajectory implements dashboard.Facade.
func (u *UI) BreakTrajectory() {
	u.mu.Lock()
	u.trail.Break()
	u.mu.Unlock()
}

// EnableTrajectoryDrawing implements dashboard.Facade.
func (u *UI) EnableTrajectoryDrawing() {
	u.mu.Lock()
	u.drawing = true
	u.mu.Unlock()
	u.markDirty()
}

// DisableTrajectoryDrawing implements dashboard.Facade.
func (u *UI) DisableTrajectoryDrawing() {
	u.mu.Lock()
	u.drawing = false
	u.trail.Clear()
	u.mu.Unlock()
	u.markDirty()
}

// ApplyControlConfig implements dashboard.Facade.
func (u *UI) ApplyControlConfig(cfg dashboard.ControlConfig) {
	u.mu.Lock()
	u.controls = cfg
	u.mu.Unlock()
	u.markDirty()
}

// SetActions implements dashboard.Facade.
func (u *UI) SetActions(actions dashboard.Actions) {
	u.mu.Lock()
	u.actions = actions
	u.mu.Unlock()
}

// ClearActions implements dashboard.Facade.
func (u *UI) ClearActions() {
	u.mu.Lock()
	u.actions = dashboard.Actions{}
	u.mu.Unlock()
}
