// Package session owns the client side of one station exchange.
//
// Ownership boundary:
// - clock-sync write
// - advisory record count and its capacity bound
// - record streaming until peer EOF, and the closing half-shutdown
package session
