package block

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

type vectorFixture struct {
	Vectors []struct {
		Name      string `yaml:"name"`
		Family    string `yaml:"family"`
		Input     string `yaml:"input"`
		Canonical string `yaml:"canonical"`
		Error     string `yaml:"error"`
		Path      string `yaml:"path"`
	} `yaml:"vectors"`
}

func loadYaml(path string, fixture interface{}) {
	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	if err := yaml.Unmarshal(file, fixture); err != nil {
		panic(err)
	}
}

func TestVectors(t *testing.T) {
	fixture := &vectorFixture{}
	loadYaml("testdata/vectors.yaml", fixture)
	assert.NotEmpty(t, fixture.Vectors)

	for _, vector := range fixture.Vectors {
		family, err := ParseFamily(vector.Family)
		assert.NoError(t, err, vector.Name)

		v, err := DecodeJSON([]byte(vector.Input), family)
		if vector.Error != "" {
			var decodeErr *DecodeError
			if assert.True(t, errors.As(err, &decodeErr), vector.Name) {
				assert.Equal(t, vector.Error, decodeErr.Kind.String(), "%s: %v", vector.Name, err)
				assert.Equal(t, vector.Path, decodeErr.Path, vector.Name)
			}
			assert.Nil(t, v, vector.Name)
			continue
		}
		if !assert.NoError(t, err, vector.Name) {
			continue
		}
		encoded, err := EncodeJSON(v)
		assert.NoError(t, err)
		expected := vector.Canonical
		if expected == "" {
			expected = vector.Input
		}
		assert.Equal(t, expected, string(encoded), vector.Name)
	}
}
