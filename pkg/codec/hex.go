package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HexPrefix is the mandatory prefix of every hex encoded byte field.
const HexPrefix = "0x"

// Hex is a byte buffer which marshals to canonical hex.
type Hex []byte

// EncodeHex returns 0x followed by the lowercase hex digits of val.
// An empty buffer encodes to "0x".
func EncodeHex(val []byte) string {
	buf := make([]byte, len(HexPrefix)+hex.EncodedLen(len(val)))
	copy(buf, HexPrefix)
	hex.Encode(buf[len(HexPrefix):], val)
	return string(buf)
}

// DecodeHex parses canonical hex. Uppercase digits are rejected.
func DecodeHex(text string) ([]byte, error) {
	if len(text) < len(HexPrefix) || text[:len(HexPrefix)] != HexPrefix {
		return nil, &HexFormatError{Reason: "missing 0x prefix"}
	}
	digits := text[len(HexPrefix):]
	if len(digits)%2 != 0 {
		return nil, &HexFormatError{Reason: fmt.Sprintf("odd number of hex digits %d", len(digits))}
	}
	for i := 0; i < len(digits); i++ {
		if !isLowerHexDigit(digits[i]) {
			return nil, &HexFormatError{Reason: fmt.Sprintf("invalid hex character %q at position %d", digits[i], i+len(HexPrefix))}
		}
	}
	res := make([]byte, len(digits)/2)
	if _, err := hex.Decode(res, []byte(digits)); err != nil {
		return nil, &HexFormatError{Reason: err.Error()}
	}
	return res, nil
}

// DecodeFixedHex parses canonical hex and requires exactly size bytes.
func DecodeFixedHex(text string, size int) ([]byte, error) {
	res, err := DecodeHex(text)
	if err != nil {
		return nil, err
	}
	if len(res) != size {
		return nil, &HexFormatError{Reason: fmt.Sprintf("expected %d bytes but received %d", size, len(res))}
	}
	return res, nil
}

func isLowerHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

func (h *Hex) UnmarshalJSON(b []byte) error {
	str := ""
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	res, err := DecodeHex(str)
	if err != nil {
		return err
	}
	*h = res
	return nil
}

func (h Hex) String() string {
	return EncodeHex(h)
}

func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(EncodeHex(h))
}
