// Package comm provides the minefield wire protocol.
package comm

// The protocol runs between a host (client) and the device holding the
// game over a point-to-point byte stream (e.g. serial port, 8N1).
//
// Request frame (host -> device):
//
//	[cmd:1][len:1][payload:len][chk:1]
//
// Response frame (device -> host):
//
//	[cmd:1][status:1][len:1][payload:len][chk:1]
//
// chk is the XOR of every preceding byte of the frame. Frames failing the
// checksum are dropped without reply; the host is expected to time out
// and resend.
//
// While a game is running the device also emits ASCII timer lines
// "T<seconds>\n" on the same stream, always between frames.
//
// Producer: device
// Consumer: host
