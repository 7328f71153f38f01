package adapter

import (
	"context"
	"sync"

	"github.com/dshills/gluepanel/internal/container"
	"github.com/dshills/gluepanel/internal/control"
	"github.com/dshills/gluepanel/internal/dashboard"
	"github.com/dshills/gluepanel/internal/event"
	"github.com/dshills/gluepanel/internal/event/topic"
	"github.com/dshills/gluepanel/internal/logging"
)

// State is the adapter's connection state.
type State int

const (
	// StateDisconnected means no subscriptions are registered.
	StateDisconnected State = iota

	// StateConnected means the adapter is routing events to the facade.
	StateConnected
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Adapter connects the event broker to the presentation facade. While
// connected it owns a set of broker subscriptions, one per routing rule,
// and translates published payloads into facade calls. It also binds the
// facade's user controls to controller requests and broker publishes.
//
// Connect and Disconnect are idempotent and safe for repeated cycles; a
// disconnected adapter leaves no subscriptions behind.
type Adapter struct {
	broker   *event.Broker
	facade   dashboard.Facade
	deps     *container.Container
	logger   *logging.Logger
	onQuit   func()
	modeAuto bool

	mu    sync.Mutex
	state State
	owner *event.Owner
	subs  []event.Subscription
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter's logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Adapter) {
		a.logger = l
	}
}

// WithQuitAction sets the callback bound to the quit control.
func WithQuitAction(fn func()) Option {
	return func(a *Adapter) {
		a.onQuit = fn
	}
}

// New creates an adapter over the given broker, facade, and collaborators.
func New(broker *event.Broker, facade dashboard.Facade, deps *container.Container, opts ...Option) *Adapter {
	a := &Adapter{
		broker:   broker,
		facade:   facade,
		deps:     deps,
		logger:   logging.Null,
		modeAuto: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithComponent("adapter")
	return a
}

// ConnectedState returns the adapter's current connection state.
func (a *Adapter) ConnectedState() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Connect registers all routing subscriptions, pulls the initial state
// from the collaborators, and binds the user controls. Connecting an
// already connected adapter is a no-op.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateConnected {
		return nil
	}

	a.owner = event.NewOwner("adapter")
	a.subs = a.subs[:0]

	if err := a.subscribeRoutes(); err != nil {
		a.teardownLocked()
		return err
	}

	a.pullInitialState(ctx)
	a.facade.SetActions(a.buildActions())

	a.deps.CameraFeedCallback(func(img dashboard.Image) {
		if err := a.broker.Publish(context.Background(), topic.VisionLatestImage, img); err != nil {
			a.logger.Warn("camera frame publish failed: err=%v", err)
		}
	})

	a.state = StateConnected
	a.logger.Info("connected: subscriptions=%d", len(a.subs))
	return nil
}

// Disconnect removes every subscription in reverse registration order,
// unbinds the user controls, and returns the adapter to the disconnected
// state. Disconnecting a disconnected adapter is a no-op.
func (a *Adapter) Disconnect() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateDisconnected {
		return nil
	}

	a.teardownLocked()
	a.facade.ClearActions()
	a.state = StateDisconnected
	a.logger.Info("disconnected")
	return nil
}

// teardownLocked unsubscribes in reverse registration order and closes the
// owner. Caller holds a.mu.
func (a *Adapter) teardownLocked() {
	for i := len(a.subs) - 1; i >= 0; i-- {
		if err := a.broker.Unsubscribe(a.subs[i]); err != nil {
			a.logger.Warn("unsubscribe failed: id=%s err=%v", a.subs[i].ID(), err)
		}
	}
	a.subs = a.subs[:0]
	if a.owner != nil {
		a.owner.Close()
		a.owner = nil
	}
}

// subscribeRoutes registers one subscription per routing rule. Caller
// holds a.mu.
func (a *Adapter) subscribeRoutes() error {
	type route struct {
		pattern topic.Topic
		handler event.Handler
	}

	routes := []route{
		{topic.AppState, &appStateRoute{facade: a.facade}},
		{topic.TrajectoryStart, &trajectoryStartRoute{facade: a.facade}},
		{topic.TrajectoryStop, &trajectoryStopRoute{facade: a.facade}},
		{topic.TrajectoryBreak, &trajectoryBreakRoute{facade: a.facade}},
		{topic.TrajectoryPoint, &trajectoryPointRoute{facade: a.facade}},
		{topic.TrajectoryImage, &trajectoryImageRoute{facade: a.facade, topic: topic.TrajectoryImage}},
		{topic.VisionLatestImage, &trajectoryImageRoute{facade: a.facade, topic: topic.VisionLatestImage}},
	}

	for cell := 1; cell <= a.broker.Catalog().Cells(); cell++ {
		routes = append(routes,
			route{topic.CellWeight(cell), &cellWeightRoute{facade: a.facade, cellID: cell}},
			route{topic.CellState(cell), &cellStateRoute{facade: a.facade, cellID: cell}},
			route{topic.CellGlueType(cell), &cellGlueTypeRoute{facade: a.facade, cellID: cell}},
		)
	}

	for _, r := range routes {
		sub, err := a.broker.Subscribe(r.pattern, r.handler, event.WithOwner(a.owner))
		if err != nil {
			return err
		}
		a.subs = append(a.subs, sub)
	}
	return nil
}

// pullInitialState seeds the facade from the collaborators so the UI is
// populated before the first event arrives. Caller holds a.mu.
func (a *Adapter) pullInitialState(ctx context.Context) {
	appState := a.deps.AppState(ctx)
	a.facade.SetAppState(appState)
	a.facade.ApplyControlConfig(controlConfigFor(appState))

	for cell := 1; cell <= a.broker.Catalog().Cells(); cell++ {
		if w, ok := a.deps.CellInitialWeight(ctx, cell); ok {
			a.facade.SetCellWeight(cell, w)
		}
		if state := a.deps.CellInitialState(ctx, cell); state != "" {
			a.facade.SetCellState(cell, state)
		}
		if glue := a.deps.CellGlueType(cell); glue != "" {
			a.facade.SetCellGlueType(cell, glue)
		}
	}
}

// buildActions binds the facade's user controls. Process controls go to
// the controller when one is wired and are otherwise silent; the mode
// toggle publishes on the broker so every interested party sees it.
func (a *Adapter) buildActions() dashboard.Actions {
	return dashboard.Actions{
		Start:          a.controllerAction(control.EndpointProcessStart),
		Stop:           a.controllerAction(control.EndpointProcessStop),
		Pause:          a.controllerAction(control.EndpointProcessPause),
		Calibrate:      a.controllerAction(control.EndpointCalibrate),
		Clean:          a.controllerAction(control.EndpointClean),
		ResetErrors:    a.controllerAction(control.EndpointResetErrors),
		ToggleMode:     a.toggleMode,
		ChangeGlueType: a.changeGlueType(),
		Quit:           a.onQuit,
	}
}

// changeGlueType returns the glue change action, or nil when no controller
// is wired. A successful change comes back to the UI through the cell's
// glue-type topic, not through this call.
func (a *Adapter) changeGlueType() func(cellID int, glueType string) {
	svc := a.deps.Controller()
	if svc == nil {
		return nil
	}
	return func(cellID int, glueType string) {
		params := map[string]any{"cell": cellID, "glueType": glueType}
		if _, err := svc.SendRequest(context.Background(), control.EndpointSetGlueType, params); err != nil {
			a.logger.Warn("glue type change failed: cell=%d err=%v", cellID, err)
		}
	}
}

// controllerAction returns an action that sends a request to the
// controller, or nil when no controller is wired.
func (a *Adapter) controllerAction(endpoint string) dashboard.Action {
	svc := a.deps.Controller()
	if svc == nil {
		return nil
	}
	return func() {
		if _, err := svc.SendRequest(context.Background(), endpoint, nil); err != nil {
			a.logger.Warn("controller request failed: endpoint=%s err=%v", endpoint, err)
		}
	}
}

// toggleMode flips the run mode, announces the change on the broker, and
// tells the controller when one is wired.
func (a *Adapter) toggleMode() {
	a.mu.Lock()
	a.modeAuto = !a.modeAuto
	mode := "manual"
	if a.modeAuto {
		mode = "auto"
	}
	a.mu.Unlock()

	if err := a.broker.Publish(context.Background(), topic.AppModeChange, mode); err != nil {
		a.logger.Warn("mode change publish failed: err=%v", err)
	}

	if svc := a.deps.Controller(); svc != nil {
		params := map[string]any{"mode": mode}
		if _, err := svc.SendRequest(context.Background(), control.EndpointAppMode, params); err != nil {
			a.logger.Warn("mode change request failed: err=%v", err)
		}
	}
}
