package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreLogging(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})
}

func TestSetupLogging_FallbackWithoutDebug(t *testing.T) {
	restoreLogging(t)
	var buf bytes.Buffer

	logFile := setupLogging(false, &buf)
	require.Nil(t, logFile)
	assert.Equal(t, io.Writer(&buf), logrus.StandardLogger().Out)

	logrus.Debug("hidden")
	logrus.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetupLogging_DiscardByDefault(t *testing.T) {
	restoreLogging(t)

	logFile := setupLogging(false, io.Discard)
	require.Nil(t, logFile)
	assert.Equal(t, io.Discard, logrus.StandardLogger().Out)
}

func TestSetupLogging_EnabledWithDebug(t *testing.T) {
	restoreLogging(t)
	t.Chdir(t.TempDir())

	logFile := setupLogging(true, io.Discard)
	require.NotNil(t, logFile)
	defer logFile.Close()

	_, err := os.Stat(logDir)
	require.NoError(t, err, "logs directory should be created")

	logrus.Debug("test log message")

	info, err := os.Stat(filepath.Join(logDir, logFileName))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
