// Package game implements the minefield: tiers, generation, reveal and
// the single game session held by the device.
package game
