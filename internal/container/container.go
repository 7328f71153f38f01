package container

import (
	"context"
	"sync"

	"github.com/dshills/gluepanel/internal/dashboard"
	"github.com/dshills/gluepanel/internal/logging"
)

// DefaultCellCapacityGrams is the cartridge capacity assumed when no cell
// registry is available.
const DefaultCellCapacityGrams = 5000.0

// ControllerService sends requests to the robot controller.
type ControllerService interface {
	// SendRequest performs one request/response exchange.
	SendRequest(ctx context.Context, endpoint string, params map[string]any) (map[string]any, error)
}

// CellRegistry answers static questions about the configured glue cells.
type CellRegistry interface {
	// CellCapacity returns the cartridge capacity of a cell in grams.
	CellCapacity(cellID int) (float64, error)

	// CellGlueType returns the adhesive product loaded in a cell.
	CellGlueType(cellID int) (string, error)

	// GlueTypes returns all adhesive products known to the system.
	GlueTypes() ([]string, error)
}

// StateQuery answers current process state questions.
type StateQuery interface {
	// AppState returns the controller's current application state.
	AppState(ctx context.Context) (dashboard.AppState, error)

	// CellState returns a cell's current process state.
	CellState(ctx context.Context, cellID int) (string, error)
}

// WeightQuery answers current weight questions.
type WeightQuery interface {
	// CellWeight returns a cell's current remaining weight in grams.
	CellWeight(ctx context.Context, cellID int) (float64, error)
}

// CameraSource provides the latest camera frame of the workpiece.
type CameraSource interface {
	// LatestImage returns the most recent frame, or ok=false when no frame
	// has been captured yet.
	LatestImage() (dashboard.Image, bool)
}

// Container holds the dashboard's collaborators. Every collaborator is
// optional; accessors fall back to safe defaults when one is absent, so
// callers never nil-check.
type Container struct {
	controller ControllerService
	cells      CellRegistry
	states     StateQuery
	weights    WeightQuery
	camera     CameraSource
	logger     *logging.Logger

	cameraOnce     sync.Once
	cameraCallback func(dashboard.Image)
}

// Option configures a Container.
type Option func(*Container)

// WithController sets the robot controller service.
func WithController(c ControllerService) Option {
	return func(ct *Container) {
		ct.controller = c
	}
}

// WithCellRegistry sets the cell registry.
func WithCellRegistry(r CellRegistry) Option {
	return func(ct *Container) {
		ct.cells = r
	}
}

// WithStateQuery sets the process state source.
func WithStateQuery(s StateQuery) Option {
	return func(ct *Container) {
		ct.states = s
	}
}

// WithWeightQuery sets the weight source.
func WithWeightQuery(w WeightQuery) Option {
	return func(ct *Container) {
		ct.weights = w
	}
}

// WithCamera sets the camera source.
func WithCamera(c CameraSource) Option {
	return func(ct *Container) {
		ct.camera = c
	}
}

// WithContainerLogger sets the container's logger.
func WithContainerLogger(l *logging.Logger) Option {
	return func(ct *Container) {
		ct.logger = l
	}
}

// New creates a container with the given collaborators.
func New(opts ...Option) *Container {
	c := &Container{
		logger: logging.Null,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("container")
	return c
}

// Controller returns the controller service, or nil when none is wired.
// This is the one accessor that exposes absence: callers that need the
// controller decide between live and simulated operation from it.
func (c *Container) Controller() ControllerService {
	return c.controller
}

// CellCapacity returns the cartridge capacity for a cell. Without a cell
// registry, or on registry error, it falls back to DefaultCellCapacityGrams.
func (c *Container) CellCapacity(cellID int) float64 {
	if c.cells == nil {
		return DefaultCellCapacityGrams
	}
	capacity, err := c.cells.CellCapacity(cellID)
	if err != nil {
		c.logger.Warn("cell capacity lookup failed: cell=%d err=%v", cellID, err)
		return DefaultCellCapacityGrams
	}
	return capacity
}

// CellGlueType returns the adhesive loaded in a cell, or "" when unknown.
func (c *Container) CellGlueType(cellID int) string {
	if c.cells == nil {
		return ""
	}
	glue, err := c.cells.CellGlueType(cellID)
	if err != nil {
		c.logger.Warn("glue type lookup failed: cell=%d err=%v", cellID, err)
		return ""
	}
	return glue
}

// AllGlueTypes returns all adhesive products, or nil when unknown.
func (c *Container) AllGlueTypes() []string {
	if c.cells == nil {
		return nil
	}
	types, err := c.cells.GlueTypes()
	if err != nil {
		c.logger.Warn("glue type listing failed: err=%v", err)
		return nil
	}
	return types
}

// AppState returns the controller's current application state, falling back
// to initializing when no state source is wired or the query fails.
func (c *Container) AppState(ctx context.Context) dashboard.AppState {
	if c.states == nil {
		return dashboard.AppStateInitializing
	}
	state, err := c.states.AppState(ctx)
	if err != nil {
		c.logger.Warn("app state query failed: err=%v", err)
		return dashboard.AppStateInitializing
	}
	return state
}

// CellInitialState returns a cell's current process state, or "" when no
// state source is wired or the query fails.
func (c *Container) CellInitialState(ctx context.Context, cellID int) string {
	if c.states == nil {
		return ""
	}
	state, err := c.states.CellState(ctx, cellID)
	if err != nil {
		c.logger.Warn("cell state query failed: cell=%d err=%v", cellID, err)
		return ""
	}
	return state
}

// CellInitialWeight returns a cell's current weight, or ok=false when no
// weight source is wired or the query fails.
func (c *Container) CellInitialWeight(ctx context.Context, cellID int) (float64, bool) {
	if c.weights == nil {
		return 0, false
	}
	w, err := c.weights.CellWeight(ctx, cellID)
	if err != nil {
		c.logger.Warn("cell weight query failed: cell=%d err=%v", cellID, err)
		return 0, false
	}
	return w, true
}

// CameraFeedCallback registers a callback for camera frames. Registration
// happens at most once; later calls are ignored. If a frame is already
// available it is delivered immediately.
func (c *Container) CameraFeedCallback(fn func(dashboard.Image)) {
	if fn == nil {
		return
	}
	c.cameraOnce.Do(func() {
		c.cameraCallback = fn
		if c.camera != nil {
			if img, ok := c.camera.LatestImage(); ok {
				fn(img)
			}
		}
	})
}

// DeliverCameraFrame pushes a frame to the registered callback, if any.
func (c *Container) DeliverCameraFrame(img dashboard.Image) {
	if c.cameraCallback != nil {
		c.cameraCallback(img)
	}
}
