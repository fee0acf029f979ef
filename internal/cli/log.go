// Package cli implements the fwmeta command-line interface.
//
// The commands scan packages for camera boot files, draw the nesting of a
// package, serve the scan catalog over HTTP and manage the detection cache.
// The CLI is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - scan: Extract metadata records from packages (JSON, table or interactive)
//   - tree: Render the archive nesting of one package
//   - serve: Serve stored records over HTTP
//   - cache: Manage the detection cache
//
// # Logging
//
// Log lines go to stderr through charmbracelet/log; --verbose (-v) enables
// debug output. Records are written to stdout only, so the JSON output can
// be piped.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w with short wall-clock timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           level,
		Prefix:          appName,
	})
}

// progress logs how long a command step took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Scanned 3 packages (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Info(fmt.Sprintf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond)))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default outside of a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
