package control

// Controller API endpoints.
const (
	// EndpointAppState reads the controller's application state.
	EndpointAppState = "app/state"

	// EndpointAppMode toggles or reads the run mode.
	EndpointAppMode = "app/mode"

	// EndpointProcessStart starts the dispensing process.
	EndpointProcessStart = "process/start"

	// EndpointProcessStop stops the dispensing process.
	EndpointProcessStop = "process/stop"

	// EndpointProcessPause pauses the dispensing process.
	EndpointProcessPause = "process/pause"

	// EndpointCalibrate starts scale calibration.
	EndpointCalibrate = "process/calibrate"

	// EndpointClean runs a nozzle cleaning cycle.
	EndpointClean = "process/clean"

	// EndpointResetErrors clears latched controller errors.
	EndpointResetErrors = "errors/reset"

	// EndpointSetGlueType assigns an adhesive product to a cell.
	EndpointSetGlueType = "cell/set-glue-type"

	// EndpointCellState reads one cell's process state.
	EndpointCellState = "cell/state"

	// EndpointCellWeight reads one cell's remaining weight.
	EndpointCellWeight = "cell/weight"

	// EndpointCellInfo reads one cell's static configuration.
	EndpointCellInfo = "cell/info"

	// EndpointGlueTypes lists all configured adhesive products.
	EndpointGlueTypes = "glue/types"
)
