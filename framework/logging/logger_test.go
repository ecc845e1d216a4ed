package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-envguard/framework/logging"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New("debug", "json", &buf)

	l.WithFields(logrus.Fields{"field": "PORT"}).Debug("field coerced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "PORT", entry["field"])
	assert.Equal(t, "field coerced", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	l := logging.New("chatty", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New("warn", "text", &buf)
	l.Info("hidden")
	assert.Empty(t, buf.String())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNop_Discards(t *testing.T) {
	l := logging.Nop()
	l.Error("nothing")
	assert.NotNil(t, l)
}
