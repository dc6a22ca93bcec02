package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWrap = 100

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return min(width, defaultWrap)
		}
	}
	return defaultWrap
}

// printAnswer writes an assistant answer, rendered as markdown on a terminal.
func printAnswer(w io.Writer, text string, raw bool) error {
	if raw || !isTerminal(w) {
		_, err := fmt.Fprintln(w, text)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(terminalWidth(w)),
		glamour.WithEmoji(),
	)
	if err != nil {
		_, err = fmt.Fprintln(w, text)
		return err
	}
	out, err := r.Render(text)
	if err != nil {
		_, err = fmt.Fprintln(w, text)
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}
