// Package logging builds the diagnostic zap logger. User-facing output goes
// through ui.Printer; log lines go to stderr or a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Debug   bool
	Verbose bool
	JSON    bool   // json encoding instead of console
	File    string // optional path; stderr when empty
}

// Level maps the CLI switches to a zap level: debug, info with --verbose,
// warn otherwise.
func (o Options) Level() zapcore.Level {
	switch {
	case o.Debug:
		return zap.DebugLevel
	case o.Verbose:
		return zap.InfoLevel
	}
	return zap.WarnLevel
}

// Logger wraps zap with the file it may own.
type Logger struct {
	*zap.Logger
	io.Closer
}

func (l Logger) Close() error {
	// Sync on stderr fails on some platforms; see uber-go/zap#880
	_ = l.Logger.Sync()
	if l.Closer == nil {
		return nil
	}
	return l.Closer.Close()
}

// New builds the logger described by opts.
func New(opts Options) (Logger, error) {
	var (
		w      zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
		closer io.Closer
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return Logger{}, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return Logger{}, fmt.Errorf("open log file: %w", err)
		}
		w, closer = zapcore.AddSync(f), f
	}
	return Logger{Logger: newZap(w, opts), Closer: closer}, nil
}

func newZap(w zapcore.WriteSyncer, opts Options) *zap.Logger {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = func(ts time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(ts.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	}
	config.LevelKey = "lvl"

	enc := zapcore.NewConsoleEncoder(config)
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(config)
	}
	return zap.New(zapcore.NewCore(enc, w, zap.NewAtomicLevelAt(opts.Level())))
}

// Nop returns a logger that discards everything.
func Nop() Logger { return Logger{Logger: zap.NewNop()} }
