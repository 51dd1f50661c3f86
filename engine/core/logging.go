package core

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type LogLevel = log.Level

const (
	DebugLevel = log.DebugLevel
	InfoLevel  = log.InfoLevel
	WarnLevel  = log.WarnLevel
	ErrorLevel = log.ErrorLevel
)

// JournalOptions configures a Journal.
type JournalOptions struct {
	Level     LogLevel
	Format    string // text, json or logfmt
	Prefix    string
	Caller    bool
	Timestamp bool
}

// Journal is the logging sink handed to every component. On top of the
// structured logger it exposes the three journal channels: fix, dev and out.
type Journal struct {
	*log.Logger
}

func DefaultJournalOptions() JournalOptions {
	return JournalOptions{
		Level:     InfoLevel,
		Format:    "text",
		Prefix:    "Cala 🎮 ",
		Timestamp: true,
	}
}

func NewJournal(w io.Writer, opts JournalOptions) *Journal {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    opts.Caller,
		ReportTimestamp: opts.Timestamp,
		TimeFormat:      time.RFC3339,
		Prefix:          opts.Prefix,
		Level:           opts.Level,
	})
	switch strings.ToLower(opts.Format) {
	case "json":
		l.SetFormatter(log.JSONFormatter)
	case "logfmt":
		l.SetFormatter(log.LogfmtFormatter)
	default:
		l.SetFormatter(log.TextFormatter)
	}
	return &Journal{l}
}

// DefaultJournal writes text to stderr at info level.
func DefaultJournal() *Journal {
	return NewJournal(os.Stderr, DefaultJournalOptions())
}

// DiscardJournal drops everything.
func DiscardJournal() *Journal {
	return NewJournal(io.Discard, JournalOptions{Level: ErrorLevel})
}

// With returns a child journal carrying the given key/value pairs.
func (j *Journal) With(keyvals ...interface{}) *Journal {
	return &Journal{j.Logger.With(keyvals...)}
}

// Fix records a defect marker.
func (j *Journal) Fix(format string, args ...interface{}) {
	j.Helper()
	j.Logger.Warn("FIXME: "+fmt.Sprintf(format, args...), "channel", "fix")
}

// Dev records a development diagnostic.
func (j *Journal) Dev(format string, args ...interface{}) {
	j.Helper()
	j.Logger.Debug(fmt.Sprintf(format, args...), "channel", "dev")
}

// Out records normal program output.
func (j *Journal) Out(format string, args ...interface{}) {
	j.Helper()
	j.Logger.Info(fmt.Sprintf(format, args...), "channel", "out")
}

// ParseLevel converts a level name to a LogLevel, falling back to info.
func ParseLevel(s string) LogLevel {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return InfoLevel
	}
	return lvl
}
