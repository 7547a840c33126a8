package codec

import (
	"encoding/json"
	"strconv"
)

// UInt64Str type for marshal and unmarshal uint64 json string.
type UInt64Str uint64

// FormatUint64 renders val the way 64-bit integers travel on the wire.
func FormatUint64(val uint64) string {
	return strconv.FormatUint(val, 10)
}

// ParseUint64 parses a decimal 64-bit integer string. Signs, leading zeros and
// whitespace are rejected so that every value has exactly one textual form.
func ParseUint64(text string) (uint64, error) {
	if len(text) > 1 && text[0] == '0' {
		return 0, &strconv.NumError{Func: "ParseUint64", Num: text, Err: strconv.ErrSyntax}
	}
	return strconv.ParseUint(text, 10, 64)
}

func (i UInt64Str) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatUint64(uint64(i)))
}

func (i *UInt64Str) UnmarshalJSON(b []byte) error {
	// Try string first
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		value, err := ParseUint64(s)
		if err != nil {
			return err
		}
		*i = UInt64Str(value)
		return nil
	}

	// Fallback to number
	return json.Unmarshal(b, (*uint64)(i))
}
