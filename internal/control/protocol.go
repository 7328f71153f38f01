package control

import "fmt"

// request is one JSON message sent to the controller.
type request struct {
	ID       string         `json:"id"`
	Endpoint string         `json:"endpoint"`
	Params   map[string]any `json:"params,omitempty"`
}

// response is one JSON message received from the controller.
// Messages with an empty ID are unsolicited pushes.
type response struct {
	ID     string         `json:"id,omitempty"`
	Topic  string         `json:"topic,omitempty"`
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// RemoteError is an error reported by the controller for a request.
type RemoteError struct {
	// Endpoint is the endpoint that failed.
	Endpoint string

	// Message is the controller's error text.
	Message string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("controller error on %s: %s", e.Endpoint, e.Message)
}

// Push is an unsolicited message from the controller, carrying a topic
// name and a payload. The adapter translates pushes into broker publishes.
type Push struct {
	// Topic is the controller's topic name for this push.
	Topic string

	// Payload is the push body.
	Payload map[string]any
}

// PushHandler receives unsolicited controller messages.
type PushHandler func(Push)
