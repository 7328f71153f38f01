// Package app wires the glue dispensing dashboard together and manages
// its lifecycle: configuration, logging, the event broker, either the
// live controller client or the offline simulator, the terminal UI, and
// the adapter binding them.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/dshills/gluepanel/internal/adapter"
	"github.com/dshills/gluepanel/internal/config"
	"github.com/dshills/gluepanel/internal/container"
	"github.com/dshills/gluepanel/internal/control"
	"github.com/dshills/gluepanel/internal/event"
	"github.com/dshills/gluepanel/internal/event/topic"
	"github.com/dshills/gluepanel/internal/logging"
	"github.com/dshills/gluepanel/internal/observability"
	"github.com/dshills/gluepanel/internal/sim"
	"github.com/dshills/gluepanel/internal/ui"
)

// ErrQuit signals a user-requested shutdown.
var ErrQuit = errors.New("quit requested")

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the TOML configuration file.
	ConfigPath string

	// Simulate forces simulator mode regardless of configuration.
	Simulate bool

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string
}

// Application coordinates the dashboard components.
type Application struct {
	cfg    config.Config
	logger *logging.Logger
	closer io.Closer // log file, when configured

	broker    *event.Broker
	deps      *container.Container
	adapter   *adapter.Adapter
	ui        *ui.UI
	client    *control.Client // nil in simulator mode
	simulator *sim.Simulator  // nil in live mode

	cancel  context.CancelFunc
	stopped atomic.Bool
}

// New loads configuration and builds the full component graph.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Simulate {
		cfg.Sim.Enabled = true
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	a := &Application{cfg: cfg}
	if err := a.setupLogging(); err != nil {
		return nil, err
	}

	var metrics observability.MetricsRecorder = observability.NoopMetrics{}
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetricsRecorder()
	}

	catalog := topic.NewCatalog(cfg.Cells.Count)
	a.broker = event.New(catalog,
		event.WithLogger(a.logger),
		event.WithMetrics(metrics),
	)

	if cfg.Sim.Enabled {
		if err := a.setupSimulator(); err != nil {
			a.broker.Close()
			return nil, err
		}
	} else {
		a.setupController()
	}

	dash, err := ui.New(cfg.Cells.Count, a.deps,
		ui.WithTheme(ui.ThemeByName(cfg.UI.Theme)),
		ui.WithRefreshInterval(cfg.UI.RefreshInterval),
		ui.WithTrailLength(cfg.Trajectory.TrailLength),
		ui.WithDrawing(cfg.Trajectory.DrawingEnabled),
		ui.WithLowThreshold(cfg.Cells.LowThresholdPercent),
		ui.WithUILogger(a.logger),
	)
	if err != nil {
		a.broker.Close()
		return nil, fmt.Errorf("creating terminal ui: %w", err)
	}
	a.ui = dash

	a.adapter = adapter.New(a.broker, dash, a.deps,
		adapter.WithLogger(a.logger),
		adapter.WithQuitAction(a.Shutdown),
	)

	return a, nil
}

// setupLogging builds the root logger from configuration.
func (a *Application) setupLogging() error {
	lcfg := logging.DefaultConfig()
	lcfg.Level = logging.ParseLevel(a.cfg.Logging.Level)

	if a.cfg.Logging.File != "" {
		f, err := os.OpenFile(a.cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		lcfg.Output = f
		a.closer = f
	}

	a.logger = logging.New(lcfg)
	return nil
}

// setupSimulator wires the offline simulator as every collaborator.
func (a *Application) setupSimulator() error {
	profile := sim.DefaultProfile()
	if a.cfg.Sim.ScriptPath != "" {
		p, err := sim.LoadProfile(a.cfg.Sim.ScriptPath)
		if err != nil {
			return err
		}
		profile = p
	}

	a.simulator = sim.New(a.broker,
		sim.WithProfile(profile),
		sim.WithTick(a.cfg.Sim.TickInterval),
		sim.WithCapacity(a.cfg.Cells.DefaultCapacityGrams),
		sim.WithLogger(a.logger),
	)

	a.deps = container.New(
		container.WithCellRegistry(a.simulator),
		container.WithStateQuery(a.simulator),
		container.WithWeightQuery(a.simulator),
		container.WithContainerLogger(a.logger),
	)
	return nil
}

// setupController wires the live controller client. The connection itself
// is established in Run; queries degrade gracefully until then.
func (a *Application) setupController() {
	a.client = control.NewClient(a.cfg.Controller.URL,
		control.WithRequestTimeout(a.cfg.Controller.RequestTimeout),
		control.WithReconnect(a.cfg.Controller.ReconnectMaxInterval, a.cfg.Controller.ReconnectMaxElapsed),
		control.WithClientLogger(a.logger),
		control.WithPushHandler(a.routePush),
	)

	queries := control.NewQueries(a.client, a.cfg.Controller.RequestTimeout)
	a.deps = container.New(
		container.WithController(a.client),
		container.WithCellRegistry(queries),
		container.WithStateQuery(queries),
		container.WithWeightQuery(queries),
		container.WithContainerLogger(a.logger),
	)
}

// Run starts all components and blocks until shutdown.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	defer cancel()

	if a.client != nil {
		if err := a.client.Connect(ctx); err != nil {
			return err
		}
		defer a.client.Close()
	}

	if err := a.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("connecting adapter: %w", err)
	}
	defer a.adapter.Disconnect()

	if a.simulator != nil {
		go func() {
			if err := a.simulator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("simulator stopped: err=%v", err)
			}
		}()
	}

	err := a.ui.Run(ctx)
	switch {
	case err == nil:
		// The UI exited on the quit control.
		return ErrQuit
	case errors.Is(err, context.Canceled):
		return nil
	}
	return err
}

// Shutdown stops the application. Safe to call from any goroutine and
// idempotent.
func (a *Application) Shutdown() {
	if !a.stopped.CompareAndSwap(false, true) {
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.broker.Close()
	if a.closer != nil {
		a.closer.Close()
	}
}

// Broker exposes the event broker for embedding hosts.
func (a *Application) Broker() *event.Broker {
	return a.broker
}

// Config returns the effective configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}
