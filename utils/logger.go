package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func InitLogger() {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()

	// Info to stdout, errors to stderr
	InfoLogger.SetOutput(os.Stdout)
	InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	ErrorLogger.SetOutput(os.Stderr)
	ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	InfoLogger.SetLevel(logrus.InfoLevel)
	ErrorLogger.SetLevel(logrus.ErrorLevel)
}

// SilenceLogger discards all log output. Used by tests.
func SilenceLogger() {
	InitLogger()
	InfoLogger.SetOutput(io.Discard)
	ErrorLogger.SetOutput(io.Discard)
}

// Info returns InfoLogger, initializing the loggers on first use.
func Info() *logrus.Logger {
	if InfoLogger == nil {
		InitLogger()
	}
	return InfoLogger
}

// Error returns ErrorLogger, initializing the loggers on first use.
func Error() *logrus.Logger {
	if ErrorLogger == nil {
		InitLogger()
	}
	return ErrorLogger
}
