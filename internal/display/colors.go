package display

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI escape codes used by the report renderers.
const (
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// paint wraps s in the given ANSI code when color is enabled.
func paint(code, s string, useColor bool) string {
	if !useColor {
		return s
	}
	return code + s + ansiReset
}

// ShouldColor reports whether w is a terminal that wants color output.
// Setting NO_COLOR disables colors regardless of the terminal.
func ShouldColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
