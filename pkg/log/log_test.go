package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input  string
		result zapcore.Level
		err    bool
	}{
		{input: "trace", result: zapcore.DebugLevel},
		{input: "debug", result: zapcore.DebugLevel},
		{input: "", result: zapcore.InfoLevel},
		{input: "INFO", result: zapcore.InfoLevel},
		{input: "warn", result: zapcore.WarnLevel},
		{input: "error", result: zapcore.ErrorLevel},
		{input: "fatal", result: zapcore.FatalLevel},
		{input: "verbose", err: true},
	}
	for _, testCase := range cases {
		result, err := ParseLevel(testCase.input)
		if testCase.err {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, testCase.result, result)
	}
}

func TestLoggerWith(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := &zapLogger{sugar: zap.New(core).Sugar()}

	logger.With("module", "store").Infof("stored %d outputs", 3)
	logger.Debug("plain")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "stored 3 outputs", entries[0].Message)
	assert.Equal(t, "store", entries[0].ContextMap()["module"])
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger("bogus")
	assert.Error(t, err)

	logger, err := NewDefaultProductionLogger()
	assert.NoError(t, err)
	assert.NotNil(t, logger)

	silent := NewSilentLogger()
	silent.Errorf("dropped %s", "message")
	assert.NoError(t, silent.Sync())
}
