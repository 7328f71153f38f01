// Package adapter routes broker events to the presentation facade.
//
// The adapter is the only component that knows both the topic catalog and
// the facade surface. Each routing rule is a small named handler that type
// checks its payload, forwards it as one facade call, and reports a
// malformed payload instead of applying it. Connect registers all rules
// and seeds the facade with the current system state; Disconnect removes
// them in reverse order and leaves nothing behind.
package adapter
