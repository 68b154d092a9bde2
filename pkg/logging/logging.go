package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. It is constructed once in main and injected
// into every service; no package keeps its own logger state.
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
