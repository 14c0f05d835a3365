package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := configure(logrus.New(), &buf, "debug", true)
	l.WithField("user_id", "u1").Debug("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestConfigureUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := configure(logrus.New(), &buf, "chatty", false)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	l.Debug("hidden")
	assert.Empty(t, buf.String())
}
