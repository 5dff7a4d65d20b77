// Package logger builds the JSON line logger shared by the service.
// Lines carry the same fields the access log and migration logs use: ts, level, msg.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.MessageFieldName = "msg"
}

type tsHook struct {
	loc *time.Location
}

func (h tsHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str("ts", time.Now().In(h.loc).Format(time.RFC3339Nano))
}

// New returns a logger writing one JSON object per line to w.
// A nil w writes to stdout; a nil loc uses UTC.
func New(w io.Writer, loc *time.Location) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if loc == nil {
		loc = time.UTC
	}
	return zerolog.New(w).Hook(tsHook{loc: loc})
}

// Nop discards everything. Use in tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
