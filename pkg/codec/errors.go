package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBech32 represents a malformed bech32 string.
	ErrInvalidBech32 = errors.New("invalid bech32 string")
	// ErrInvalidChecksum represents a bech32 string with a checksum mismatch.
	ErrInvalidChecksum = errors.New("invalid checksum")
)

// HexFormatError reports a hex string that is not in canonical form.
// Field is empty when the value is decoded outside of a named field.
type HexFormatError struct {
	Field  string
	Reason string
}

func (e *HexFormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid hex: %s", e.Reason)
	}
	return fmt.Sprintf("invalid hex in %s: %s", e.Field, e.Reason)
}

// WithField returns a copy of the error attributed to the given field.
func (e *HexFormatError) WithField(field string) *HexFormatError {
	return &HexFormatError{Field: field, Reason: e.Reason}
}
