package dashboard

// AppState is the top-level application lifecycle state shown in the
// status bar and used to select the action set.
type AppState string

const (
	AppStateInitializing AppState = "initializing"
	AppStateIdle         AppState = "idle"
	AppStatePaused       AppState = "paused"
	AppStateStopped      AppState = "stopped"
	AppStateStarted      AppState = "started"
	AppStateError        AppState = "error"
	AppStateCalibrating  AppState = "calibrating"
)

// IsValid reports whether s is a known application state.
func (s AppState) IsValid() bool {
	switch s {
	case AppStateInitializing, AppStateIdle, AppStatePaused, AppStateStopped,
		AppStateStarted, AppStateError, AppStateCalibrating:
		return true
	}
	return false
}

// CellStateRecord is a snapshot of one glue cell for presentation.
type CellStateRecord struct {
	// CellID is the 1-based cell identifier.
	CellID int

	// State is the cell's process state, e.g. "idle" or "dispensing".
	State string

	// WeightGrams is the remaining cartridge weight.
	WeightGrams float64

	// CapacityGrams is the cartridge capacity.
	CapacityGrams float64

	// GlueType is the loaded adhesive product name.
	GlueType string
}

// FillPercent returns remaining weight as a percentage of capacity,
// clamped to [0, 100]. A zero capacity yields 0.
func (r CellStateRecord) FillPercent() float64 {
	if r.CapacityGrams <= 0 {
		return 0
	}
	pct := r.WeightGrams / r.CapacityGrams * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// CellStateChange is the payload published on a cell's state topic. Only
// CurrentState drives the presentation; the rest is context for logs and
// recorders.
type CellStateChange struct {
	// CellID is the 1-based cell identifier.
	CellID int

	// CurrentState is the state the cell entered.
	CurrentState string

	// PreviousState is the state the cell left.
	PreviousState string

	// Reason describes what triggered the transition.
	Reason string

	// WeightGrams is the remaining weight at transition time.
	WeightGrams float64

	// Timestamp is the transition time in Unix milliseconds.
	Timestamp int64

	// Details carries free-form transition context.
	Details map[string]any
}

// Point is a single robot trajectory sample in workpiece coordinates.
type Point struct {
	X float64
	Y float64
	Z float64
}

// Image is a camera frame for the trajectory backdrop.
type Image struct {
	// Data is the encoded image bytes.
	Data []byte

	// Format is the encoding, e.g. "png" or "jpeg".
	Format string

	// Width and Height are the pixel dimensions, when known.
	Width  int
	Height int
}

// ControlConfig describes the controls exposed for the current mode.
type ControlConfig struct {
	// StartEnabled, StopEnabled, PauseEnabled gate the process controls.
	StartEnabled bool
	StopEnabled  bool
	PauseEnabled bool

	// CalibrateEnabled gates the calibration control.
	CalibrateEnabled bool

	// CleanEnabled gates the nozzle cleaning control.
	CleanEnabled bool

	// ResetEnabled gates the error reset control.
	ResetEnabled bool

	// ModeLabel is the label shown on the mode toggle control.
	ModeLabel string
}

// Action is a callback bound to a user control.
type Action func()

// Actions is the set of callbacks the presentation layer invokes in
// response to user input. Nil entries are legal and mean the control
// does nothing.
type Actions struct {
	Start     Action
	Stop      Action
	Pause     Action
	Calibrate Action

	// Clean requests a nozzle cleaning cycle.
	Clean Action

	// ResetErrors clears latched controller errors.
	ResetErrors Action

	// ToggleMode switches between run modes.
	ToggleMode Action

	// ChangeGlueType requests a different adhesive for one cell.
	ChangeGlueType func(cellID int, glueType string)

	// Quit requests application shutdown.
	Quit Action
}
