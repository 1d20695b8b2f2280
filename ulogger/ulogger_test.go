package ulogger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kodemon/sats/ulogger"
	"github.com/ordishs/gocore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var lines []map[string]interface{}

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))

		lines = append(lines, m)
	}

	return lines
}

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("indexer", ulogger.WithWriter(&buf), ulogger.WithPrettyLogs(false), ulogger.WithLevel("INFO"))

	logger.Debugf("hidden %d", 1)
	logger.Infof("indexed block %d", 170)
	logger.Warnf("tip moved to %d", 171)

	lines := jsonLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "indexed block 170", lines[0]["message"])
	assert.Equal(t, "indexer", lines[0]["service"])
	assert.Equal(t, "warn", lines[1]["level"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected int
	}{
		{"DEBUG", int(gocore.DEBUG)},
		{"info", int(gocore.INFO)},
		{"WARN", int(gocore.WARN)},
		{"ERROR", int(gocore.ERROR)},
		{"bogus", int(gocore.INFO)},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer

			logger := ulogger.New("test", ulogger.WithWriter(&buf), ulogger.WithPrettyLogs(false), ulogger.WithLevel(tt.level))
			assert.Equal(t, tt.expected, logger.LogLevel())
		})
	}
}

func TestChildLoggerKeepsParentOptions(t *testing.T) {
	var buf bytes.Buffer

	parent := ulogger.New("parent", ulogger.WithWriter(&buf), ulogger.WithPrettyLogs(false), ulogger.WithLevel("WARN"))
	child := parent.New("store")

	child.Infof("not written")
	child.Errorf("written")

	lines := jsonLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "store", lines[0]["service"])
	assert.Equal(t, "written", lines[0]["message"])

	dup := parent.Duplicate(ulogger.WithLevel("DEBUG"))
	assert.Equal(t, int(gocore.DEBUG), dup.LogLevel())
	assert.Equal(t, int(gocore.WARN), parent.LogLevel())
}

func TestPrettyLogging(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("indexer", ulogger.WithWriter(&buf), ulogger.WithPrettyLogs(true))
	logger.Infof("hello %s", "sats")

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "indexer")
	assert.Contains(t, out, "hello sats")
}

func TestTestLogger(t *testing.T) {
	var logger ulogger.Logger = ulogger.TestLogger{}

	logger.Infof("nothing %d", 1)
	assert.Equal(t, logger, logger.New("x"))
	assert.Equal(t, 0, logger.Duplicate().LogLevel())
}

func TestVerboseTestLogger(t *testing.T) {
	var logger ulogger.Logger = ulogger.NewVerboseTestLogger(t)

	logger.Debugf("debug %d", 1)
	logger.Infof("info")
	assert.Same(t, logger, logger.New("x"))
}

func TestGoCoreLogger(t *testing.T) {
	logger := ulogger.New("gocore-test", ulogger.WithLoggerType("gocore"), ulogger.WithLevel("WARN"))

	_, ok := logger.(*ulogger.GoCoreLogger)
	require.True(t, ok)

	child := logger.New("gocore-child")
	assert.Equal(t, logger.LogLevel(), child.LogLevel())

	dup := logger.Duplicate()
	assert.Equal(t, logger.LogLevel(), dup.LogLevel())
}
