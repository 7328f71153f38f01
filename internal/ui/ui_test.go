package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gluepanel/internal/container"
	"github.com/dshills/gluepanel/internal/dashboard"
)

func newTestUI(t *testing.T) (*UI, tcell.SimulationScreen) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	screen.SetSize(100, 30)
	t.Cleanup(screen.Fini)

	u, err := New(3, container.New(), WithScreen(screen))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return u, screen
}

// screenText reads a row of the simulation screen as a string.
func screenText(screen tcell.SimulationScreen, y int) string {
	cells, w, _ := screen.GetContents()
	out := make([]rune, 0, w)
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) > 0 {
			out = append(out, c.Runes[0])
		} else {
			out = append(out, ' ')
		}
	}
	return string(out)
}

func contains(haystack, needle string) bool {
	return len(needle) == 0 || (len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestUI_RendersCellCards(t *testing.T) {
	u, screen := newTestUI(t)

	u.SetCellState(2, "dispensing")
	u.SetCellWeight(2, 4321.5)
	u.SetCellGlueType(2, "EP-310")
	u.render()

	found := false
	for y := 0; y < 6; y++ {
		row := screenText(screen, y)
		if contains(row, "Cell 2") {
			found = true
		}
	}
	if !found {
		t.Error("cell 2 card title not rendered")
	}

	var sawState, sawGlue bool
	for y := 0; y < 6; y++ {
		row := screenText(screen, y)
		if contains(row, "dispensing") {
			sawState = true
		}
		if contains(row, "EP-310") {
			sawGlue = true
		}
	}
	if !sawState {
		t.Error("cell state not rendered")
	}
	if !sawGlue {
		t.Error("glue type not rendered")
	}
}

func TestUI_StatusBarShowsAppState(t *testing.T) {
	u, screen := newTestUI(t)

	u.SetAppState(dashboard.AppStateStarted)
	u.ApplyControlConfig(dashboard.ControlConfig{StopEnabled: true})
	u.render()

	_, h := screen.Size()
	bar := screenText(screen, h-1)
	if !contains(bar, "started") {
		t.Errorf("status bar = %q, want app state", bar)
	}
	if !contains(bar, "x:stop") {
		t.Errorf("status bar = %q, want stop hint", bar)
	}
	if contains(bar, "s:start") {
		t.Errorf("status bar = %q, start hint shown while disabled", bar)
	}
}

func TestUI_KeyRespectsControlConfig(t *testing.T) {
	u, _ := newTestUI(t)

	var started, stopped int
	u.SetActions(dashboard.Actions{
		Start: func() { started++ },
		Stop:  func() { stopped++ },
	})
	u.ApplyControlConfig(dashboard.ControlConfig{StartEnabled: true})

	u.handleKey(tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone))
	u.handleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))

	if started != 1 {
		t.Errorf("start invoked %d times, want 1", started)
	}
	if stopped != 0 {
		t.Errorf("stop invoked %d times while disabled, want 0", stopped)
	}
}

func TestUI_QuitInvokesAction(t *testing.T) {
	u, _ := newTestUI(t)

	quits := 0
	u.SetActions(dashboard.Actions{Quit: func() { quits++ }})

	u.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	if quits != 1 {
		t.Errorf("quit invoked %d times, want 1", quits)
	}

	select {
	case <-u.quit:
	default:
		t.Error("quit channel not closed")
	}
}

func TestUI_DrawingDisabledAtStart(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)

	u, err := New(1, container.New(), WithScreen(screen), WithDrawing(false))
	if err != nil {
		t.Fatal(err)
	}

	u.UpdateTrajectoryPoint(dashboard.Point{X: 1, Y: 2})
	if u.trail.Len() != 0 {
		t.Errorf("trail length = %d with drawing disabled, want 0", u.trail.Len())
	}

	u.EnableTrajectoryDrawing()
	u.UpdateTrajectoryPoint(dashboard.Point{X: 1, Y: 2})
	if u.trail.Len() != 1 {
		t.Errorf("trail length = %d after enabling, want 1", u.trail.Len())
	}
}

type countingRegistry struct {
	capacity float64
	calls    int
}

func (r *countingRegistry) CellCapacity(cellID int) (float64, error) {
	r.calls++
	return r.capacity, nil
}
func (r *countingRegistry) CellGlueType(cellID int) (string, error) { return "", nil }
func (r *countingRegistry) GlueTypes() ([]string, error)            { return nil, nil }

func TestUI_CapacityQueriedOncePerCell(t *testing.T) {
	reg := &countingRegistry{capacity: 0} // registry that knows nothing useful
	deps := container.New(container.WithCellRegistry(reg))

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)

	u, err := New(1, deps, WithScreen(screen))
	if err != nil {
		t.Fatal(err)
	}
	if reg.calls != 1 {
		t.Fatalf("capacity queried %d times during construction, want 1", reg.calls)
	}

	u.SetCellWeight(1, 100)
	u.SetCellWeight(1, 90)

	if reg.calls != 1 {
		t.Errorf("capacity queried %d times after weight events, want 1", reg.calls)
	}
}

type glueRegistry struct {
	types []string
}

func (g *glueRegistry) CellCapacity(cellID int) (float64, error) { return 1000, nil }
func (g *glueRegistry) CellGlueType(cellID int) (string, error)  { return g.types[0], nil }
func (g *glueRegistry) GlueTypes() ([]string, error)             { return g.types, nil }

func TestUI_DigitSelectsCell(t *testing.T) {
	u, _ := newTestUI(t)

	u.handleKey(tcell.NewEventKey(tcell.KeyRune, '3', tcell.ModNone))
	if u.selected != 3 {
		t.Errorf("selected = %d, want 3", u.selected)
	}

	u.handleKey(tcell.NewEventKey(tcell.KeyRune, '9', tcell.ModNone))
	if u.selected != 3 {
		t.Errorf("selected = %d after out-of-range digit, want 3", u.selected)
	}
}

func TestUI_GlueKeyCyclesTypes(t *testing.T) {
	deps := container.New(container.WithCellRegistry(&glueRegistry{
		types: []string{"EP-310", "EP-411"},
	}))

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)

	u, err := New(3, deps, WithScreen(screen))
	if err != nil {
		t.Fatal(err)
	}

	var gotCell int
	var gotType string
	u.SetActions(dashboard.Actions{
		ChangeGlueType: func(cellID int, glueType string) {
			gotCell, gotType = cellID, glueType
		},
	})

	u.SetCellGlueType(2, "EP-310")
	u.handleKey(tcell.NewEventKey(tcell.KeyRune, '2', tcell.ModNone))
	u.handleKey(tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone))

	if gotCell != 2 {
		t.Errorf("change requested for cell %d, want 2", gotCell)
	}
	if gotType != "EP-411" {
		t.Errorf("change requested type %q, want next in cycle EP-411", gotType)
	}
}

func TestUI_GlueKeyNoopWithoutTypes(t *testing.T) {
	u, _ := newTestUI(t)

	called := false
	u.SetActions(dashboard.Actions{
		ChangeGlueType: func(int, string) { called = true },
	})

	u.handleKey(tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone))
	if called {
		t.Error("glue change requested with no known types")
	}
}

func TestUI_ClearActionsUnbinds(t *testing.T) {
	u, _ := newTestUI(t)

	calls := 0
	u.SetActions(dashboard.Actions{ToggleMode: func() { calls++ }})
	u.ClearActions()

	u.handleKey(tcell.NewEventKey(tcell.KeyRune, 'm', tcell.ModNone))
	if calls != 0 {
		t.Errorf("cleared action invoked %d times, want 0", calls)
	}
}

func TestUI_TrajectoryDrawingGate(t *testing.T) {
	u, _ := newTestUI(t)

	u.UpdateTrajectoryPoint(dashboard.Point{X: 1, Y: 1})
	if u.trail.Len() != 1 {
		t.Fatalf("trail len = %d, want 1", u.trail.Len())
	}

	u.DisableTrajectoryDrawing()
	if u.trail.Len() != 0 {
		t.Errorf("trail not cleared on disable")
	}

	u.UpdateTrajectoryPoint(dashboard.Point{X: 2, Y: 2})
	if u.trail.Len() != 0 {
		t.Errorf("point buffered while drawing disabled")
	}

	u.EnableTrajectoryDrawing()
	u.UpdateTrajectoryPoint(dashboard.Point{X: 3, Y: 3})
	if u.trail.Len() != 1 {
		t.Errorf("trail len after re-enable = %d, want 1", u.trail.Len())
	}
}

func TestTrail_CapsTotal(t *testing.T) {
	tr := NewTrail(3)
	for i := 0; i < 5; i++ {
		tr.Add(dashboard.Point{X: float64(i)})
	}
	if tr.Len() != 3 {
		t.Errorf("len = %d, want 3", tr.Len())
	}

	segs := tr.Segments()
	if len(segs) != 1 || segs[0][0].X != 2 {
		t.Errorf("oldest points not dropped: %v", segs)
	}
}

func TestTrail_BreakStartsNewSegment(t *testing.T) {
	tr := NewTrail(10)
	tr.Add(dashboard.Point{X: 1})
	tr.Break()
	tr.Break() // double break is a no-op
	tr.Add(dashboard.Point{X: 2})

	segs := tr.Segments()
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2", len(segs))
	}
	if len(segs[0]) != 1 || len(segs[1]) != 1 {
		t.Errorf("segment sizes = %d/%d, want 1/1", len(segs[0]), len(segs[1]))
	}
}

func TestTrail_Bounds(t *testing.T) {
	tr := NewTrail(10)
	if _, _, _, _, ok := tr.Bounds(); ok {
		t.Error("empty trail reported bounds")
	}

	tr.Add(dashboard.Point{X: -5, Y: 2})
	tr.Add(dashboard.Point{X: 3, Y: -7})

	minX, minY, maxX, maxY, ok := tr.Bounds()
	if !ok {
		t.Fatal("bounds missing")
	}
	if minX != -5 || maxX != 3 || minY != -7 || maxY != 2 {
		t.Errorf("bounds = %v %v %v %v", minX, minY, maxX, maxY)
	}
}

func TestTheme_MeterColorRamp(t *testing.T) {
	theme := DarkTheme()

	low := theme.MeterColor(0)
	high := theme.MeterColor(100)
	if low == high {
		t.Error("ramp endpoints identical")
	}

	// Out-of-range input clamps instead of extrapolating.
	if theme.MeterColor(-10) != low {
		t.Error("negative pct not clamped")
	}
	if theme.MeterColor(150) != high {
		t.Error("pct over 100 not clamped")
	}
}

func TestThemeByName(t *testing.T) {
	if ThemeByName("light").Background == ThemeByName("dark").Background {
		t.Error("light and dark themes share a background")
	}
	if ThemeByName("unknown").Background != DarkTheme().Background {
		t.Error("unknown theme does not default to dark")
	}
}
