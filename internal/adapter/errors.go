package adapter

import "fmt"

// MalformedPayloadError reports a payload whose type did not match the
// schema fixed for its topic. The routes return it so the dispatch layer
// logs and counts the drop; the payload is never partially applied.
type MalformedPayloadError struct {
	// Topic is the topic the payload arrived on.
	Topic string

	// Want is the expected payload type.
	Want string

	// Got is the actual payload value.
	Got any
}

// Error implements the error interface.
func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload on %s: want %s, got %T", e.Topic, e.Want, e.Got)
}
