package event

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/gluepanel/internal/event/dispatch"
	"github.com/dshills/gluepanel/internal/event/topic"
	"github.com/dshills/gluepanel/internal/logging"
	"github.com/dshills/gluepanel/internal/observability"
)

// Broker is a synchronous topic-based publish/subscribe hub over a closed
// topic catalog. Publishing delivers to matching subscribers in registration
// order, in the caller's goroutine; a subscriber that errors or panics never
// prevents delivery to the remaining subscribers.
//
// Both publish topics and subscribe patterns are validated against the
// catalog: publishing requires an exact catalog member, subscribing requires
// a pattern that matches at least one member.
type Broker struct {
	catalog     *topic.Catalog
	registry    *Registry
	dispatcher  *dispatch.SyncDispatcher
	logger      *logging.Logger
	metrics     observability.MetricsRecorder
	errObserver func(error)
	closed      atomic.Bool

	// Stats
	published   atomic.Uint64
	delivered   atomic.Uint64
	errors      atomic.Uint64
	panics      atomic.Uint64
	deadDropped atomic.Uint64
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithLogger sets the broker's logger.
func WithLogger(l *logging.Logger) BrokerOption {
	return func(b *Broker) {
		b.logger = l
	}
}

// WithMetrics sets the broker's metrics recorder.
func WithMetrics(m observability.MetricsRecorder) BrokerOption {
	return func(b *Broker) {
		b.metrics = m
	}
}

// WithErrorObserver installs a hook that receives every failed delivery
// as a wrapped error: a *HandlerError for a subscriber error, a
// *PanicError for a recovered panic. Delivery continues either way.
func WithErrorObserver(fn func(error)) BrokerOption {
	return func(b *Broker) {
		b.errObserver = fn
	}
}

// WithBrokerPanicHandler installs a hook called after a subscriber panic is
// recovered. The broker continues dispatching regardless.
func WithBrokerPanicHandler(h PanicHandler) BrokerOption {
	return func(b *Broker) {
		b.dispatcher = dispatch.NewSyncDispatcher(
			dispatch.WithPanicHandler(dispatch.PanicHandler(h)),
		)
	}
}

// New creates a broker over the given topic catalog.
func New(catalog *topic.Catalog, opts ...BrokerOption) *Broker {
	b := &Broker{
		catalog:    catalog,
		registry:   NewRegistry(),
		dispatcher: dispatch.NewSyncDispatcher(),
		logger:     logging.Null,
		metrics:    observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithComponent("broker")
	return b
}

// Subscribe registers a handler for a topic pattern. The pattern must match
// at least one catalog member; otherwise ErrUnknownTopic is returned.
// Patterns may use wildcards ("glue.cell.*.weight", "robot.trajectory.**").
//
// The same handler may be subscribed to the same pattern more than once;
// each registration is delivered independently.
func (b *Broker) Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error) {
	if b.closed.Load() {
		return nil, ErrBrokerClosed
	}
	if h == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}
	if !b.catalog.MatchesAny(pattern) {
		return nil, &UnknownTopicError{Topic: string(pattern)}
	}

	sub := newSubscription(uuid.New().String(), pattern, h, opts...)
	b.registry.Add(sub)

	b.logger.Debug("subscribed: id=%s pattern=%s", sub.ID(), pattern)
	return sub, nil
}

// SubscribeFunc registers a handler function for a topic pattern.
func (b *Broker) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe removes a subscription. Unsubscribing a subscription that was
// already removed, or passing nil, is a no-op. A subscription that did not
// come from a Broker is rejected with ErrInvalidSubscription.
func (b *Broker) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	if _, ok := sub.(*subscription); !ok {
		return ErrInvalidSubscription
	}
	if b.registry.Remove(sub.ID()) {
		sub.Cancel()
		b.logger.Debug("unsubscribed: id=%s pattern=%s", sub.ID(), sub.Pattern())
	}
	return nil
}

// Publish delivers a payload to all subscribers whose pattern matches the
// topic, synchronously and in registration order. The topic must be an exact
// member of the catalog.
//
// Subscriptions whose owner has been closed are pruned rather than invoked.
// A subscriber error or panic is logged and counted but does not stop
// delivery; Publish itself returns an error only for an unknown topic or a
// closed broker.
func (b *Broker) Publish(ctx context.Context, t topic.Topic, payload any) error {
	if b.closed.Load() {
		return ErrBrokerClosed
	}
	if !b.catalog.Contains(t) {
		return &UnknownTopicError{Topic: string(t)}
	}

	b.published.Add(1)

	// Snapshot before iterating so handlers may subscribe or unsubscribe
	// without affecting this dispatch cycle.
	subs := b.registry.Match(t)
	b.metrics.RecordPublish(ctx, string(t), len(subs))

	for _, sub := range subs {
		if !sub.ownerAlive() {
			b.prune(ctx, sub)
			continue
		}
		if !sub.shouldDeliver(payload) {
			continue
		}

		result := b.dispatcher.Dispatch(ctx, payload, sub.handler)
		b.metrics.RecordDelivery(ctx, string(t), result.Duration, result.Error)

		switch {
		case result.Panicked:
			b.panics.Add(1)
			b.metrics.RecordPanic(ctx, string(t))
			perr := &PanicError{
				SubscriptionID: sub.ID(),
				Topic:          string(t),
				Value:          result.PanicValue,
				Stack:          string(result.PanicStack),
			}
			b.logger.Error("delivery failed: err=%v value=%v", perr, perr.Value)
			b.observe(perr)
		case result.Error != nil && !result.Skipped:
			b.errors.Add(1)
			herr := &HandlerError{
				SubscriptionID: sub.ID(),
				Topic:          string(t),
				Err:            result.Error,
			}
			b.logger.Warn("delivery failed: err=%v", herr)
			b.observe(herr)
		case result.Success:
			b.delivered.Add(1)
		}
	}

	return nil
}

func (b *Broker) observe(err error) {
	if b.errObserver != nil {
		b.errObserver(err)
	}
}

// prune removes a subscription whose owner has been closed.
func (b *Broker) prune(ctx context.Context, sub *subscription) {
	if b.registry.Remove(sub.ID()) {
		sub.Cancel()
		b.deadDropped.Add(1)
		b.metrics.RecordDeadDrop(ctx, string(sub.Pattern()))

		owner := ""
		if sub.config.Owner != nil {
			owner = sub.config.Owner.Name()
		}
		b.logger.Debug("pruned dead subscription: id=%s pattern=%s owner=%s", sub.ID(), sub.Pattern(), owner)
	}
}

// SubscriberCount returns the number of live subscriptions that would
// currently receive a publish on the given topic.
func (b *Broker) SubscriberCount(t topic.Topic) int {
	return b.registry.CountLive(t)
}

// Catalog returns the broker's topic catalog.
func (b *Broker) Catalog() *topic.Catalog {
	return b.catalog
}

// Stats returns a point-in-time snapshot of broker statistics.
func (b *Broker) Stats() Stats {
	ds := b.dispatcher.Stats()
	return Stats{
		EventsPublished:     b.published.Load(),
		EventsDelivered:     b.delivered.Load(),
		HandlerErrors:       b.errors.Load(),
		HandlerPanics:       b.panics.Load(),
		DeadDropped:         b.deadDropped.Load(),
		ActiveSubscriptions: b.registry.CountActive(),
		AvgDeliveryTimeNs:   ds.AvgDuration.Nanoseconds(),
	}
}

// Close shuts the broker down. Subsequent Subscribe and Publish calls fail
// with ErrBrokerClosed. Close is idempotent.
func (b *Broker) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	for _, sub := range b.registry.All() {
		sub.Cancel()
	}
	b.registry.Clear()
	b.logger.Debug("broker closed")
	return nil
}
