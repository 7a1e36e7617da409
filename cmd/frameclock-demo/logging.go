package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const (
	logDir      = "logs"
	logFileName = "frameclock.log"
)

// setupLogging routes the standard logrus logger
// debug writes everything to logs/frameclock.log; otherwise Info and above go to fallback
// Returns the opened file for the caller to close, nil when not logging to a file
func setupLogging(debug bool, fallback io.Writer) *os.File {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})

	if !debug {
		logrus.SetOutput(fallback)
		logrus.SetLevel(logrus.InfoLevel)
		return nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		logrus.SetOutput(fallback)
		logrus.WithError(err).Warn("log directory unavailable")
		return nil
	}

	logFile, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logrus.SetOutput(fallback)
		logrus.WithError(err).Warn("log file unavailable")
		return nil
	}

	logrus.SetOutput(logFile)
	logrus.SetLevel(logrus.DebugLevel)
	return logFile
}
