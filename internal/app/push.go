package app

import (
	"context"
	"encoding/base64"

	"github.com/dshills/gluepanel/internal/control"
	"github.com/dshills/gluepanel/internal/dashboard"
	"github.com/dshills/gluepanel/internal/event/topic"
)

// routePush translates an unsolicited controller message into a broker
// publish. Unknown push topics and malformed payloads are logged and
// dropped; the controller protocol is not trusted to match the catalog.
func (a *Application) routePush(p control.Push) {
	ctx := context.Background()

	var (
		t       topic.Topic
		payload any
		ok      bool
	)

	switch p.Topic {
	case "app/state":
		t = topic.AppState
		payload, ok = pushString(p, "state")
	case "app/mode":
		t = topic.AppModeChange
		payload, ok = pushString(p, "mode")
	case "cell/state":
		var cell int
		if cell, ok = pushCell(p); ok {
			t = topic.CellState(cell)
			payload, ok = pushString(p, "state")
		}
	case "cell/weight":
		var cell int
		if cell, ok = pushCell(p); ok {
			t = topic.CellWeight(cell)
			payload, ok = pushFloat(p, "grams")
		}
	case "cell/glue-type":
		var cell int
		if cell, ok = pushCell(p); ok {
			t = topic.CellGlueType(cell)
			payload, ok = pushString(p, "glueType")
		}
	case "trajectory/start":
		t, payload, ok = topic.TrajectoryStart, nil, true
	case "trajectory/stop":
		t, payload, ok = topic.TrajectoryStop, nil, true
	case "trajectory/break":
		t, payload, ok = topic.TrajectoryBreak, nil, true
	case "trajectory/point":
		t = topic.TrajectoryPoint
		payload, ok = pushPoint(p)
	case "trajectory/image":
		t = topic.TrajectoryImage
		payload, ok = pushImage(p)
	case "vision/image":
		t = topic.VisionLatestImage
		payload, ok = pushImage(p)
	default:
		a.logger.Debug("dropping push for unknown topic: %s", p.Topic)
		return
	}

	if !ok {
		a.logger.Warn("dropping malformed push: topic=%s payload=%v", p.Topic, p.Payload)
		return
	}

	if err := a.broker.Publish(ctx, t, payload); err != nil {
		a.logger.Warn("push publish failed: topic=%s err=%v", t, err)
	}
}

func pushString(p control.Push, key string) (string, bool) {
	s, ok := p.Payload[key].(string)
	return s, ok
}

func pushFloat(p control.Push, key string) (float64, bool) {
	f, ok := p.Payload[key].(float64)
	return f, ok
}

// pushCell reads the 1-based cell id. JSON numbers decode as float64.
func pushCell(p control.Push) (int, bool) {
	f, ok := p.Payload["cell"].(float64)
	if !ok || f < 1 {
		return 0, false
	}
	return int(f), true
}

func pushPoint(p control.Push) (dashboard.Point, bool) {
	x, xok := pushFloat(p, "x")
	y, yok := pushFloat(p, "y")
	z, zok := pushFloat(p, "z")
	if !xok || !yok {
		return dashboard.Point{}, false
	}
	if !zok {
		z = 0
	}
	return dashboard.Point{X: x, Y: y, Z: z}, true
}

func pushImage(p control.Push) (dashboard.Image, bool) {
	encoded, ok := pushString(p, "data")
	if !ok {
		return dashboard.Image{}, false
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return dashboard.Image{}, false
	}

	img := dashboard.Image{Data: data}
	img.Format, _ = pushString(p, "format")
	if w, wok := pushFloat(p, "width"); wok {
		img.Width = int(w)
	}
	if h, hok := pushFloat(p, "height"); hok {
		img.Height = int(h)
	}
	return img, true
}
