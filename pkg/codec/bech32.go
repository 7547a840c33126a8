package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Bech32Encode returns the bech32 representation of data with the human readable part hrp.
func Bech32Encode(hrp string, data []byte) (string, error) {
	if hrp == "" {
		return "", fmt.Errorf("%w: empty human readable part", ErrInvalidBech32)
	}
	if strings.ToLower(hrp) != hrp {
		return "", fmt.Errorf("%w: human readable part must be lowercase", ErrInvalidBech32)
	}
	encoded, err := bech32.EncodeFromBase256(hrp, data)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidBech32, err)
	}
	return encoded, nil
}

// Bech32Decode parses a lowercase bech32 string and returns its human readable part and data.
func Bech32Decode(val string) (string, []byte, error) {
	if strings.ToLower(val) != val {
		return "", nil, fmt.Errorf("%w: must be lowercase", ErrInvalidBech32)
	}
	hrp, data, err := bech32.DecodeToBase256(val)
	if err != nil {
		var checksumErr bech32.ErrInvalidChecksum
		if errors.As(err, &checksumErr) {
			return "", nil, fmt.Errorf("%w: %s", ErrInvalidChecksum, err)
		}
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidBech32, err)
	}
	return hrp, data, nil
}
