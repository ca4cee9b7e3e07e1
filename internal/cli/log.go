package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// logFormats maps --log-format values to formatters. Text is for people,
// json and logfmt are for log shippers in front of "linkscope serve".
var logFormats = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

// newLogger creates a logger writing to w at level, with timestamps
// formatted as "HH:MM:SS.ms" (e.g. "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// SetLogFormat switches the logger to the named format.
func (c *CLI) SetLogFormat(name string) error {
	f, ok := logFormats[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("invalid log format: %q (must be text, json or logfmt)", name)
	}
	c.Logger.SetFormatter(f)
	return nil
}

// progress times a command. mark logs each step at debug level with the
// time since the previous mark; done logs the total at info level.
type progress struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, last: now}
}

func (p *progress) mark(step string) {
	now := time.Now()
	p.logger.Debug(step, "took", now.Sub(p.last).Round(time.Microsecond))
	p.last = now
}

func (p *progress) done(msg string) {
	p.logger.Info(msg, "elapsed", time.Since(p.start).Round(time.Millisecond))
}
