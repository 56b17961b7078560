// Package logging builds the application logger. The terminal UI owns
// stdout, so log lines go to a rotating file and optionally to the UI log pane.
package logging

import (
	"errors"
	"io"
	"log"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// UILines receives a copy of every line. Lines are dropped while it is full.
	UILines chan<- string
}

// Logger is a *log.Logger plus the resources behind it
type Logger struct {
	*log.Logger
	file *lumberjack.Logger
	ui   *chanWriter
}

func New(opts Options) (*Logger, error) {
	if opts.File == "" {
		return nil, errors.New("logging: file cannot be empty")
	}

	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}

	l := &Logger{file: file}
	var out io.Writer = file
	if opts.UILines != nil {
		l.ui = &chanWriter{ch: opts.UILines}
		out = io.MultiWriter(file, l.ui)
	}
	l.Logger = log.New(out, "", log.LstdFlags)
	return l, nil
}

// Dropped counts lines the UI pane did not take
func (l *Logger) Dropped() int64 {
	if l.ui == nil {
		return 0
	}
	return l.ui.dropped.Load()
}

// Close stops the UI tee and closes the log file
func (l *Logger) Close() error {
	if l.ui != nil {
		l.ui.closed.Store(true)
	}
	return l.file.Close()
}

type chanWriter struct {
	ch      chan<- string
	closed  atomic.Bool
	dropped atomic.Int64
}

// Write never blocks and never fails: the file is the record, the pane is a view
func (w *chanWriter) Write(p []byte) (int, error) {
	if w.closed.Load() {
		return len(p), nil
	}
	select {
	case w.ch <- string(p):
	default:
		w.dropped.Add(1)
	}
	return len(p), nil
}
