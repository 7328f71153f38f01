package event

import "context"

// Handler is the interface for event subscribers.
type Handler interface {
	// Handle processes one published payload.
	// The payload parameter is type-erased; handlers should type-assert
	// against the schema fixed for their topic.
	Handle(ctx context.Context, payload any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, payload any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, payload any) error {
	return f(ctx, payload)
}

// FilterFunc is a predicate for filtering payloads.
// Return true to allow delivery, false to filter it out.
type FilterFunc func(payload any) bool

// PanicHandler is called when a subscriber panics during dispatch.
type PanicHandler func(payload any, recovered any, stack []byte)

// Stats contains broker statistics.
type Stats struct {
	// EventsPublished is the total number of publish calls accepted.
	EventsPublished uint64

	// EventsDelivered is the total number of successful subscriber invocations.
	EventsDelivered uint64

	// HandlerErrors is the number of subscriber invocations that returned errors.
	HandlerErrors uint64

	// HandlerPanics is the number of subscriber panics isolated during dispatch.
	HandlerPanics uint64

	// DeadDropped is the number of subscriptions pruned because their owner
	// was closed before delivery.
	DeadDropped uint64

	// ActiveSubscriptions is the current number of live subscriptions.
	ActiveSubscriptions int

	// AvgDeliveryTimeNs is the average subscriber invocation time in nanoseconds.
	AvgDeliveryTimeNs int64
}
