package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"auto_repost_instagram/config"
)

// Manager manages application loggers and their underlying files.
type Manager struct {
	infoLogger  *logrus.Logger
	errorLogger *logrus.Logger
	infoFile    *os.File
	errorFile   *os.File
}

var global *Manager

// Initialize configures the global logger manager.
func Initialize(cfg *config.Config) (*Manager, error) {
	manager, err := New(cfg)
	if err != nil {
		return nil, err
	}
	global = manager
	return manager, nil
}

// New creates a new Manager instance.
func New(cfg *config.Config) (*Manager, error) {
	dir := cfg.LogDirectory
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	outputFile := cfg.LogOutputFile
	if outputFile == "" {
		outputFile = "app.log"
	}
	errorFile := cfg.LogErrorFile
	if errorFile == "" {
		errorFile = "app.error.log"
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	infoHandle, err := os.OpenFile(filepath.Join(dir, outputFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open info log file: %w", err)
	}

	errorHandle, err := os.OpenFile(filepath.Join(dir, errorFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		infoHandle.Close()
		return nil, fmt.Errorf("open error log file: %w", err)
	}

	return &Manager{
		infoLogger:  newLogger(io.MultiWriter(os.Stdout, infoHandle), level),
		errorLogger: newLogger(io.MultiWriter(os.Stderr, errorHandle), level),
		infoFile:    infoHandle,
		errorFile:   errorHandle,
	}, nil
}

// NewWithWriters builds a Manager that writes to the given sinks without files.
func NewWithWriters(info, errs io.Writer) *Manager {
	return &Manager{
		infoLogger:  newLogger(info, logrus.DebugLevel),
		errorLogger: newLogger(errs, logrus.DebugLevel),
	}
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
	})
	return l
}

// Info returns the info logger.
func (m *Manager) Info() *logrus.Logger {
	return m.infoLogger
}

// Error returns the error logger.
func (m *Manager) Error() *logrus.Logger {
	return m.errorLogger
}

// Close releases file handles.
func (m *Manager) Close() error {
	var firstErr error
	if m.infoFile != nil {
		if err := m.infoFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if m.errorFile != nil {
		if err := m.errorFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SetGlobal replaces the global manager and returns the previous one.
func SetGlobal(m *Manager) *Manager {
	prev := global
	global = m
	return prev
}

// Close releases the global logger manager if initialized.
func Close() error {
	if global == nil {
		return nil
	}
	err := global.Close()
	global = nil
	return err
}

// Info returns the global info logger.
func Info() *logrus.Logger {
	if global != nil {
		return global.Info()
	}
	return logrus.StandardLogger()
}

// Warn returns the logger used for recoverable problems. Callers log with
// Warnf so the entry survives a warn level filter.
func Warn() *logrus.Logger {
	return Error()
}

// Error returns the global error logger.
func Error() *logrus.Logger {
	if global != nil {
		return global.Error()
	}
	return logrus.StandardLogger()
}
