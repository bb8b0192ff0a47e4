// Package protocol owns the station wire contract.
//
// Ownership boundary:
// - clock packet encoding (client -> station)
// - packed measurement decoding (station -> client)
// - decode validation errors
package protocol
