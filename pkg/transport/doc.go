// Package transport opens the byte streams the protocol runs on: a serial
// port (8N1) or a websocket carrying binary frames.
package transport
