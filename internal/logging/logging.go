// Package logging builds the process loggers used across tagtask.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger with the given prefix. When file is non-empty the
// logger also writes to it with rotation; otherwise output goes to stderr
// only.
func New(prefix, file string) *log.Logger {
	var out io.Writer = os.Stderr
	if file != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
			Compress:   true,
		})
	}
	return log.New(out, prefix, log.LstdFlags)
}

// NewQuiet returns a logger that writes only to the rotated file, or
// discards output entirely when no file is configured. Used by post-commit
// hooks whose chatter should not reach the terminal.
func NewQuiet(prefix, file string) *log.Logger {
	if file == "" {
		return log.New(io.Discard, prefix, log.LstdFlags)
	}
	return log.New(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}, prefix, log.LstdFlags)
}
