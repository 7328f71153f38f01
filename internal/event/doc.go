// Package event implements the dashboard's in-process publish/subscribe
// broker.
//
// The broker carries typed payloads between producers (the controller
// adapter, the simulator) and consumers (UI widgets, recorders) over a
// closed catalog of hierarchical topics. Delivery is synchronous and in
// registration order; subscriber failures are isolated so one bad handler
// never starves the rest.
//
// Subscriptions may carry an Owner liveness token. When the owner is
// closed, its subscriptions stop receiving payloads immediately and are
// pruned from the registry on the next matching publish.
package event
