// Package sim generates synthetic dashboard events for offline operation.
//
// The simulator stands in for the robot controller: it publishes weight
// decay, dispense cycles, cartridge swaps, and trajectory paths on the
// same topics the live adapter consumes, and answers the container's
// state and weight queries. A Lua profile script can reshape the
// simulation without recompiling.
package sim
