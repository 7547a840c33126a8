package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testUint64StrData struct {
	Val []UInt64Str `json:"val"`
}

func TestUInt64Str(t *testing.T) {
	obj := &testUint64StrData{
		Val: []UInt64Str{10000, 0, 1234, 18446744073709551615},
	}

	marshaled, err := json.Marshal(obj)
	assert.NoError(t, err)
	assert.Equal(t, "{\"val\":[\"10000\",\"0\",\"1234\",\"18446744073709551615\"]}", string(marshaled))

	data := &testUint64StrData{}
	err = json.Unmarshal(marshaled, data)
	assert.NoError(t, err)
	assert.Equal(t, obj.Val, data.Val)

	assert.Contains(t, json.Unmarshal([]byte("{\"val\":[\"10000\",\"0\",\"ab\"]}"), data).Error(), "strconv.ParseUint")
}

func TestParseUint64(t *testing.T) {
	cases := []struct {
		input  string
		result uint64
		valid  bool
	}{
		{input: "0", result: 0, valid: true},
		{input: "1000000", result: 1000000, valid: true},
		{input: "18446744073709551615", result: 18446744073709551615, valid: true},
		{input: "18446744073709551616", valid: false},
		{input: "-1", valid: false},
		{input: "+1", valid: false},
		{input: "01", valid: false},
		{input: "", valid: false},
		{input: "1.5", valid: false},
	}
	for _, testCase := range cases {
		result, err := ParseUint64(testCase.input)
		if !testCase.valid {
			assert.Error(t, err, testCase.input)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, testCase.result, result)
		assert.Equal(t, testCase.input, FormatUint64(result))
	}
}
