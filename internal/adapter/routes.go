package adapter

import (
	"context"

	"github.com/dshills/gluepanel/internal/dashboard"
	"github.com/dshills/gluepanel/internal/event/topic"
)

// cellWeightRoute forwards weight updates for one cell to the facade.
type cellWeightRoute struct {
	facade dashboard.Facade
	cellID int
}

func (r *cellWeightRoute) Handle(ctx context.Context, payload any) error {
	grams, ok := payload.(float64)
	if !ok {
		return &MalformedPayloadError{Topic: string(topic.CellWeight(r.cellID)), Want: "float64", Got: payload}
	}
	r.facade.SetCellWeight(r.cellID, grams)
	return nil
}

// cellStateRoute forwards process state changes for one cell to the facade.
type cellStateRoute struct {
	facade dashboard.Facade
	cellID int
}

// Handle accepts either the full state-change record or a bare state
// string; only the current state reaches the facade.
func (r *cellStateRoute) Handle(ctx context.Context, payload any) error {
	switch p := payload.(type) {
	case dashboard.CellStateChange:
		r.facade.SetCellState(r.cellID, p.CurrentState)
	case string:
		r.facade.SetCellState(r.cellID, p)
	default:
		return &MalformedPayloadError{Topic: string(topic.CellState(r.cellID)), Want: "CellStateChange or string", Got: payload}
	}
	return nil
}

// cellGlueTypeRoute forwards adhesive changes for one cell to the facade.
type cellGlueTypeRoute struct {
	facade dashboard.Facade
	cellID int
}

func (r *cellGlueTypeRoute) Handle(ctx context.Context, payload any) error {
	glue, ok := payload.(string)
	if !ok {
		return &MalformedPayloadError{Topic: string(topic.CellGlueType(r.cellID)), Want: "string", Got: payload}
	}
	r.facade.SetCellGlueType(r.cellID, glue)
	return nil
}

// appStateRoute forwards application state changes to the facade and
// reconfigures the controls for the new state.
type appStateRoute struct {
	facade dashboard.Facade
}

func (r *appStateRoute) Handle(ctx context.Context, payload any) error {
	state, ok := payload.(dashboard.AppState)
	if !ok {
		if s, sok := payload.(string); sok {
			state = dashboard.AppState(s)
			ok = true
		}
	}
	if !ok || !state.IsValid() {
		return &MalformedPayloadError{Topic: string(topic.AppState), Want: "AppState", Got: payload}
	}

	r.facade.SetAppState(state)
	r.facade.ApplyControlConfig(controlConfigFor(state))
	return nil
}

// trajectoryStartRoute enables trajectory drawing.
type trajectoryStartRoute struct {
	facade dashboard.Facade
}

func (r *trajectoryStartRoute) Handle(ctx context.Context, payload any) error {
	r.facade.EnableTrajectoryDrawing()
	return nil
}

// trajectoryStopRoute disables trajectory drawing.
type trajectoryStopRoute struct {
	facade dashboard.Facade
}

func (r *trajectoryStopRoute) Handle(ctx context.Context, payload any) error {
	r.facade.DisableTrajectoryDrawing()
	return nil
}

// trajectoryBreakRoute ends the current trail segment.
type trajectoryBreakRoute struct {
	facade dashboard.Facade
}

func (r *trajectoryBreakRoute) Handle(ctx context.Context, payload any) error {
	r.facade.BreakTrajectory()
	return nil
}

// trajectoryPointRoute forwards trajectory samples to the facade.
type trajectoryPointRoute struct {
	facade dashboard.Facade
}

func (r *trajectoryPointRoute) Handle(ctx context.Context, payload any) error {
	p, ok := payload.(dashboard.Point)
	if !ok {
		return &MalformedPayloadError{Topic: string(topic.TrajectoryPoint), Want: "Point", Got: payload}
	}
	r.facade.UpdateTrajectoryPoint(p)
	return nil
}

// trajectoryImageRoute replaces the trajectory canvas backdrop.
type trajectoryImageRoute struct {
	facade dashboard.Facade
	topic  topic.Topic
}

func (r *trajectoryImageRoute) Handle(ctx context.Context, payload any) error {
	img, ok := payload.(dashboard.Image)
	if !ok {
		return &MalformedPayloadError{Topic: string(r.topic), Want: "Image", Got: payload}
	}
	r.facade.SetTrajectoryImage(img)
	return nil
}
