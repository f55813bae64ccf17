package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Encodings supported by the logger.
const (
	ConsoleEncoding = "console"
	JSONEncoding    = "json"
)

// Config selects the level and output encoding.
type Config struct {
	Level    string
	Encoding string
}

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Get returns a singleton logger configured with cfg.
// The first call initializes the logger; subsequent calls ignore cfg
// and return the already initialized instance.
func Get(cfg Config) *Logger {
	once.Do(func() {
		globalLogger = New(cfg)
	})
	return globalLogger
}
