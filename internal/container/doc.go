// Package container wires the dashboard's collaborators together.
//
// Every collaborator is optional. Accessors return safe fallbacks for
// missing ones (default cartridge capacity, empty glue type, initializing
// app state), so the dashboard degrades gracefully when run against a
// partial system such as the offline simulator.
package container
