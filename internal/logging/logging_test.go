package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segmentio/encoding/json"
)

func TestNew_Levels(t *testing.T) {
	tests := map[string]logrus.Level{
		"trace":   logrus.TraceLevel,
		"DEBUG":   logrus.DebugLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"loud":    logrus.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, New(in, "text", &bytes.Buffer{}).GetLevel(), in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New("info", "json", &buf).WithField("path", "a.txt").Info("created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "created", line["msg"])
	assert.Equal(t, "a.txt", line["path"])
}

func TestNew_TextFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", "text", &buf)
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
