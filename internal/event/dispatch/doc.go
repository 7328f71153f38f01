// Package dispatch provides handler execution for the dashboard event broker.
//
// Delivery on the broker is in-process and synchronous: handlers run in the
// publisher's goroutine, in registration order. This package supplies the
// execution layer under that model - the SyncDispatcher and its Executor.
//
// # Panic Recovery
//
// The executor recovers from panics in handlers, preventing a misbehaving
// subscriber from crashing the dashboard or starving the remaining
// subscribers of a publish. Panics are reported via a configurable
// PanicHandler callback.
//
// # Context Support
//
// Dispatch respects context cancellation: if a context is cancelled before a
// handler runs, the handler is skipped and the Result carries the context
// error.
//
// # Usage
//
//	dispatcher := dispatch.NewSyncDispatcher(
//	    dispatch.WithPanicHandler(func(event any, v any, stack []byte) {
//	        log.Printf("panic in subscriber: %v\n%s", v, stack)
//	    }),
//	)
//	result := dispatcher.Dispatch(ctx, event, handler)
//	if !result.Success {
//	    // error or panic, already isolated
//	}
//
// The Result type captures success/failure, the handler error, execution
// duration, and panic details if applicable.
package dispatch
