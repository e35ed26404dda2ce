// Package device is the device side of the minefield protocol. A Device
// owns the game session, decodes request frames from a byte stream,
// dispatches them to the session and writes response frames and timer
// lines back on the same stream.
package device
