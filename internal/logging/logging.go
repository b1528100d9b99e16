// Package logging builds the application logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/cihui/internal/config"
)

// FileName is the log file written under the data directory while the
// TUI owns the terminal.
const FileName = "cihui.log"

// New builds a logger writing to w.
func New(cfg config.LogConfig, w io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(w)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: w != os.Stderr})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return logger, nil
}

// NewFile builds a logger appending to FileName in dataDir. The returned
// closer releases the file.
func NewFile(cfg config.LogConfig, dataDir string) (*logrus.Logger, io.Closer, error) {
	f, err := os.OpenFile(filepath.Join(dataDir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger, err := New(cfg, f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger, f, nil
}
