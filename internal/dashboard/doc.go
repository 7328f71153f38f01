// Package dashboard defines the presentation boundary of the glue
// dispensing dashboard.
//
// The Facade interface is the only surface the event adapter touches;
// concrete implementations live in the ui package. Shared presentation
// types (cell records, trajectory points, control configuration) are
// defined here so the adapter, container, and UI agree on them without
// importing each other.
package dashboard
