package control

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/gluepanel/internal/container"
	"github.com/dshills/gluepanel/internal/dashboard"
)

// Queries adapts the controller request API into the typed query
// interfaces the container expects.
type Queries struct {
	svc     container.ControllerService
	timeout time.Duration
}

var (
	_ container.CellRegistry = (*Queries)(nil)
	_ container.StateQuery   = (*Queries)(nil)
	_ container.WeightQuery  = (*Queries)(nil)
)

// NewQueries wraps a controller service for typed queries. Static lookups
// (capacity, glue type) run under the given timeout.
func NewQueries(svc container.ControllerService, timeout time.Duration) *Queries {
	return &Queries{svc: svc, timeout: timeout}
}

// AppState returns the controller's current application state.
func (q *Queries) AppState(ctx context.Context) (dashboard.AppState, error) {
	result, err := q.svc.SendRequest(ctx, EndpointAppState, nil)
	if err != nil {
		return "", err
	}
	state := dashboard.AppState(stringField(result, "state"))
	if !state.IsValid() {
		return "", fmt.Errorf("controller returned unknown app state %q", state)
	}
	return state, nil
}

// CellState returns a cell's current process state.
func (q *Queries) CellState(ctx context.Context, cellID int) (string, error) {
	result, err := q.svc.SendRequest(ctx, EndpointCellState, cellParams(cellID))
	if err != nil {
		return "", err
	}
	return stringField(result, "state"), nil
}

// CellWeight returns a cell's current remaining weight in grams.
func (q *Queries) CellWeight(ctx context.Context, cellID int) (float64, error) {
	result, err := q.svc.SendRequest(ctx, EndpointCellWeight, cellParams(cellID))
	if err != nil {
		return 0, err
	}
	w, ok := floatField(result, "grams")
	if !ok {
		return 0, fmt.Errorf("cell %d weight response missing grams", cellID)
	}
	return w, nil
}

// CellCapacity returns the cartridge capacity of a cell in grams.
func (q *Queries) CellCapacity(cellID int) (float64, error) {
	ctx, cancel := q.queryContext()
	defer cancel()

	result, err := q.svc.SendRequest(ctx, EndpointCellInfo, cellParams(cellID))
	if err != nil {
		return 0, err
	}
	capacity, ok := floatField(result, "capacityGrams")
	if !ok {
		return 0, fmt.Errorf("cell %d info response missing capacityGrams", cellID)
	}
	return capacity, nil
}

// CellGlueType returns the adhesive product loaded in a cell.
func (q *Queries) CellGlueType(cellID int) (string, error) {
	ctx, cancel := q.queryContext()
	defer cancel()

	result, err := q.svc.SendRequest(ctx, EndpointCellInfo, cellParams(cellID))
	if err != nil {
		return "", err
	}
	return stringField(result, "glueType"), nil
}

// GlueTypes returns all adhesive products known to the controller.
func (q *Queries) GlueTypes() ([]string, error) {
	ctx, cancel := q.queryContext()
	defer cancel()

	result, err := q.svc.SendRequest(ctx, EndpointGlueTypes, nil)
	if err != nil {
		return nil, err
	}

	raw, _ := result["types"].([]any)
	types := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			types = append(types, s)
		}
	}
	return types, nil
}

func (q *Queries) queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), q.timeout)
}

func cellParams(cellID int) map[string]any {
	return map[string]any{"cell": cellID}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// floatField reads a numeric field. JSON numbers decode as float64, but
// hand-built maps in tests may carry ints.
func floatField(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
