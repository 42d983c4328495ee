package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketflow-backend/internal/config"
)

func TestNew_JSONFormat(t *testing.T) {
	log := New(config.LoggingConfig{Level: "warn", Format: "json"})
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.Info("dropped")
	log.WithField("session_id", "abc").Warn("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "abc", entry["session_id"])
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
}

func TestNew_FallsBackToInfo(t *testing.T) {
	log := New(config.LoggingConfig{Level: "loud", Format: "text"})

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	_, isText := log.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}
