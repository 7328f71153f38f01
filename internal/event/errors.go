package event

import "errors"

// Sentinel errors for the event broker.
var (
	// ErrUnknownTopic is returned when a publish or subscribe references a
	// topic outside the closed catalog.
	ErrUnknownTopic = errors.New("unknown topic")

	// ErrInvalidTopic is returned when a topic is empty or malformed.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidSubscription is returned when a nil or foreign subscription
	// is passed to Unsubscribe.
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrBrokerClosed is returned when operations are attempted after Close.
	ErrBrokerClosed = errors.New("broker is closed")

	// ErrHandlerPanic is matched by errors.Is against PanicError.
	ErrHandlerPanic = errors.New("subscriber panicked")
)

// UnknownTopicError reports the offending topic alongside ErrUnknownTopic.
type UnknownTopicError struct {
	// Topic is the topic or pattern that was not in the catalog.
	Topic string
}

// Error implements the error interface.
func (e *UnknownTopicError) Error() string {
	return "unknown topic " + e.Topic
}

// Is allows errors.Is to match UnknownTopicError with ErrUnknownTopic.
func (e *UnknownTopicError) Is(target error) bool {
	return target == ErrUnknownTopic
}

// HandlerError wraps an error from a subscriber with additional context.
type HandlerError struct {
	// SubscriptionID is the ID of the subscription whose handler failed.
	SubscriptionID string

	// Topic is the topic the payload was published on.
	Topic string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return "subscriber error for subscription " + e.SubscriptionID + " on topic " + e.Topic + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic value as an error.
type PanicError struct {
	// SubscriptionID is the ID of the subscription whose handler panicked.
	SubscriptionID string

	// Topic is the topic the payload was published on.
	Topic string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return "subscriber panic for subscription " + e.SubscriptionID + " on topic " + e.Topic
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
