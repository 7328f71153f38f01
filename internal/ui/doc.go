// Package ui renders the glue dispensing dashboard in the terminal.
//
// UI implements the presentation facade on top of tcell: one meter card
// per glue cell, a trajectory canvas, and a status bar with the key
// bindings for the currently enabled controls. Facade calls only mutate
// state; painting happens on the render loop's own cadence.
package ui
