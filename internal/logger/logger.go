// Package logger configures the process-wide zerolog logger.
package logger

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger. level is a zerolog level name; empty
// or unknown falls back to info. Output is the human console format on a
// terminal and JSON otherwise, so journald gets structured lines.
func Setup(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		short := file
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			short = file[idx+1:]
		}
		return short + ":" + strconv.Itoa(line)
	}

	var out zerolog.Logger
	if isatty.IsTerminal(os.Stderr.Fd()) {
		cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
		out = zerolog.New(cw)
	} else {
		out = zerolog.New(os.Stderr)
	}
	log.Logger = out.With().Timestamp().Caller().Logger()
}

// ConfigureTestLogging routes the global logger through the test runner
// for the duration of the test.
func ConfigureTestLogging(t *testing.T) {
	old := log.Logger
	log.Logger = log.Output(zerolog.NewConsoleWriter(zerolog.ConsoleTestWriter(t)))
	t.Cleanup(func() {
		log.Logger = old
	})
}
