// Package codec implements the textual encodings shared by every block field: canonical
// 0x-prefixed hex for byte buffers, decimal strings for 64-bit integers and bech32 for
// human readable addresses.
package codec
