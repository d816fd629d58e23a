// Package logger holds the process-wide zerolog logger.
//
// Call Init once in main; library code receives a zerolog.Logger through its
// constructor, usually one derived with Component.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls the logger built by Init.
type Options struct {
	// Level is one of trace, debug, info, warn or error. Anything else means info.
	Level string
	// Pretty switches from JSON lines to coloured console output.
	Pretty bool
	// Output defaults to os.Stderr.
	Output io.Writer
	// Service is attached to every line when set.
	Service string
}

var (
	mu       sync.RWMutex
	instance = zerolog.Nop()
	ready    bool
)

// Init builds the process logger. Later calls are ignored until Reset.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if ready {
		return instance
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	ctx := zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	if opts.Pretty {
		ctx = ctx.Caller()
	}
	instance = ctx.Logger()
	ready = true
	return instance
}

// Get returns the process logger, or a no-op logger before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Component returns the process logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset drops the process logger so that Init builds a new one. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = zerolog.Nop()
	ready = false
}

// ParseLevel maps a level name to a zerolog.Level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
