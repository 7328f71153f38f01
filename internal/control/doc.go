// Package control implements the websocket client for the robot
// controller.
//
// The controller speaks a JSON request/response protocol over a single
// websocket connection. Requests carry generated IDs; the client
// correlates responses back to waiting callers and routes unsolicited
// pushes (state changes, weight updates, trajectory samples) to a push
// handler for the event adapter to translate.
package control
