package dashboard

// Facade is the presentation boundary. The adapter drives the entire UI
// through this interface and never reaches into widgets directly; any
// implementation (terminal UI, recorder, test double) can stand behind it.
//
// All methods are called from the adapter's dispatch goroutine.
// Implementations marshal onto their own render thread as needed.
type Facade interface {
	// SetCellWeight updates the remaining weight display for a cell.
	SetCellWeight(cellID int, grams float64)

	// SetCellState updates the process state badge for a cell.
	SetCellState(cellID int, state string)

	// SetCellGlueType updates the adhesive product label for a cell.
	SetCellGlueType(cellID int, glueType string)

	// SetAppState updates the application state indicator.
	SetAppState(state AppState)

	// SetTrajectoryImage replaces the trajectory canvas backdrop.
	SetTrajectoryImage(img Image)

	// UpdateTrajectoryPoint appends a point to the current trajectory trail.
	UpdateTrajectoryPoint(p Point)

	// BreakTrajectory ends the current trail segment; the next point
	// starts a new one.
	BreakTrajectory()

	// EnableTrajectoryDrawing starts plotting incoming points.
	EnableTrajectoryDrawing()

	// DisableTrajectoryDrawing stops plotting and clears the trail.
	DisableTrajectoryDrawing()

	// ApplyControlConfig enables or disables controls for the current mode.
	ApplyControlConfig(cfg ControlConfig)

	// SetActions binds user control callbacks.
	SetActions(actions Actions)

	// ClearActions unbinds all user control callbacks.
	ClearActions()
}

// NullFacade is a Facade that ignores every call. Useful as a safe default
// and in tests.
type NullFacade struct{}

var _ Facade = NullFacade{}

func (NullFacade) SetCellWeight(int, float64)       {}
func (NullFacade) SetCellState(int, string)         {}
func (NullFacade) SetCellGlueType(int, string)      {}
func (NullFacade) SetAppState(AppState)             {}
func (NullFacade) SetTrajectoryImage(Image)         {}
func (NullFacade) UpdateTrajectoryPoint(Point)      {}
func (NullFacade) BreakTrajectory()                 {}
func (NullFacade) EnableTrajectoryDrawing()         {}
func (NullFacade) DisableTrajectoryDrawing()        {}
func (NullFacade) ApplyControlConfig(ControlConfig) {}
func (NullFacade) SetActions(Actions)               {}
func (NullFacade) ClearActions()                    {}
