package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// New returns a logger tagged with service. Output is JSON unless stdout is
// a terminal.
func New(service string) *slog.Logger {
	return NewWithWriter(os.Stdout, service, isTerminal(os.Stdout))
}

func NewWithWriter(w io.Writer, service string, text bool) *slog.Logger {
	var h slog.Handler
	if text {
		h = slog.NewTextHandler(w, nil)
	} else {
		h = slog.NewJSONHandler(w, nil)
	}
	return slog.New(h).With("service", service)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
