package adapter

import "github.com/dshills/gluepanel/internal/dashboard"

// controlConfigs maps each application state to the controls available in
// it. States absent from the map fall back to everything disabled.
var controlConfigs = map[dashboard.AppState]dashboard.ControlConfig{
	dashboard.AppStateInitializing: {},
	dashboard.AppStateIdle: {
		StartEnabled:     true,
		CalibrateEnabled: true,
		CleanEnabled:     true,
		ModeLabel:        "Auto",
	},
	dashboard.AppStateStarted: {
		StopEnabled:  true,
		PauseEnabled: true,
		ModeLabel:    "Auto",
	},
	dashboard.AppStatePaused: {
		StartEnabled: true,
		StopEnabled:  true,
		ModeLabel:    "Auto",
	},
	dashboard.AppStateStopped: {
		StartEnabled:     true,
		CalibrateEnabled: true,
		CleanEnabled:     true,
		ModeLabel:        "Auto",
	},
	dashboard.AppStateCalibrating: {
		StopEnabled: true,
		ModeLabel:   "Auto",
	},
	dashboard.AppStateError: {
		StopEnabled:  true,
		ResetEnabled: true,
		ModeLabel:    "Auto",
	},
}

// controlConfigFor returns the control configuration for an application
// state.
func controlConfigFor(state dashboard.AppState) dashboard.ControlConfig {
	return controlConfigs[state]
}
