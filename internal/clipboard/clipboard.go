// Package clipboard copies text to the system clipboard through the
// platform's clipboard tool.
package clipboard

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrUnavailable is returned when no clipboard tool is installed.
var ErrUnavailable = errors.New("no clipboard tool found")

// CopiedMsg reports the outcome of Copy.
type CopiedMsg struct {
	Text string
	Err  error
}

// command picks the clipboard tool for goos. lookPath reports whether a
// binary is installed.
func command(goos string, lookPath func(string) bool) ([]string, bool) {
	switch goos {
	case "darwin":
		return []string{"pbcopy"}, lookPath("pbcopy")
	case "windows":
		return []string{"cmd", "/c", "clip"}, true
	}
	// Wayland first, then X11 tools.
	candidates := [][]string{
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
	}
	for _, c := range candidates {
		if lookPath(c[0]) {
			return c, true
		}
	}
	return nil, false
}

func installed(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Write copies text to the system clipboard.
func Write(text string) error {
	args, ok := command(runtime.GOOS, installed)
	if !ok {
		return ErrUnavailable
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// Available checks if clipboard functionality is available.
func Available() bool {
	_, ok := command(runtime.GOOS, installed)
	return ok
}

// Copy returns a command that writes text to the clipboard off the event
// loop and reports with a CopiedMsg.
func Copy(text string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Text: text, Err: Write(text)}
	}
}
