package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogAppender is an output destination for encoded log events.
type LogAppender interface {
	io.Writer
	Refresh()
}

// ConsoleAppender writes human readable events to stdout.
type ConsoleAppender struct {
	w zerolog.ConsoleWriter
}

// NewConsoleAppender creates a console appender.
func NewConsoleAppender() *ConsoleAppender {
	return &ConsoleAppender{
		w: zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339},
	}
}

func (a *ConsoleAppender) Write(p []byte) (int, error) {
	return a.w.Write(p)
}

// Refresh is a no-op for stdout.
func (a *ConsoleAppender) Refresh() {}

// FileAppender appends JSON events to a file. lumberjack rotates it once it
// grows past FileSplitMB and reopens it on the next write after a failure.
type FileAppender struct {
	out *lumberjack.Logger
}

// NewFileAppender creates the appender for cfg.LogPath. A FileSplitMB of
// zero keeps lumberjack's default of 100 MB.
func NewFileAppender(cfg *LogCfg) (*FileAppender, error) {
	if cfg.LogPath == "" {
		return nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &FileAppender{
		out: &lumberjack.Logger{
			Filename:  cfg.LogPath,
			MaxSize:   cfg.FileSplitMB,
			LocalTime: true,
		},
	}, nil
}

func (a *FileAppender) Write(p []byte) (int, error) {
	return a.out.Write(p)
}

// Refresh is a no-op, lumberjack does not buffer.
func (a *FileAppender) Refresh() {}

// Rotate closes the current file and starts a new one.
func (a *FileAppender) Rotate() error {
	return a.out.Rotate()
}

// Close closes the underlying file.
func (a *FileAppender) Close() error {
	return a.out.Close()
}
