// Package host is the host side of the minefield protocol: a decoded
// board and a game helper issuing commands through a comm.Client.
package host
