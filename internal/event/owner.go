package event

import "sync/atomic"

// Owner is a liveness token standing in for the lifetime of a subscriber's
// owning component (typically a widget or an adapter session).
//
// The broker never pins an owner alive: a subscription registered with an
// owner is delivered only while the owner is alive, and is lazily pruned
// once the owner is closed. This is the weak-reference discipline that keeps
// destroyed widgets from receiving events.
type Owner struct {
	name   string
	closed atomic.Bool
}

// NewOwner creates a live owner token. The name is used in logs only.
func NewOwner(name string) *Owner {
	return &Owner{name: name}
}

// Name returns the owner's display name.
func (o *Owner) Name() string {
	return o.name
}

// Alive returns true until Close is called.
func (o *Owner) Alive() bool {
	return !o.closed.Load()
}

// Close marks the owner dead. All subscriptions registered with this owner
// stop receiving payloads immediately; the broker prunes them lazily on the
// next dispatch. Close is idempotent.
func (o *Owner) Close() {
	o.closed.Store(true)
}
