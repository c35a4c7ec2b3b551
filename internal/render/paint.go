package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/tolk/internal/align"
	"github.com/mattn/go-runewidth"
)

// Styles used when painting lines.
var (
	plainTokenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee"))

	targetTokenStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a8dadc"))

	focusTokenStyle = lipgloss.NewStyle().
			Underline(true).
			Reverse(true)
)

// Word is a piece of text with the style it is drawn in.
type Word struct {
	Text  string
	Style lipgloss.Style
}

// SourceWords styles the source line. focus is the token under the cursor,
// -1 for none. Known words are bold when hints are on.
func (l Layout) SourceWords(focus int) []Word {
	words := make([]Word, len(l.Source))
	for i, tok := range l.Source {
		style := tokenStyle(tok.Token, plainTokenStyle)
		if tok.Known() {
			style = style.Bold(true)
		}
		if i == focus && tok.Interactive() {
			style = style.Inherit(focusTokenStyle)
		}
		words[i] = Word{Text: tok.Text, Style: style}
	}
	return words
}

// TargetWords styles the target line. It is empty when the target is hidden.
func (l Layout) TargetWords() []Word {
	if !l.ShowTarget {
		return nil
	}
	words := make([]Word, len(l.Target))
	for i, tok := range l.Target {
		words[i] = Word{Text: tok.Text, Style: tokenStyle(tok, targetTokenStyle)}
	}
	return words
}

func tokenStyle(tok align.Token, base lipgloss.Style) lipgloss.Style {
	if tok.Colored() {
		return base.Foreground(lipgloss.Color(string(tok.Color)))
	}
	return base
}

// Line joins words with single spaces and wraps at width display columns.
// A width of zero or less disables wrapping.
func Line(words []Word, width int) string {
	var b strings.Builder
	col := 0
	for i, w := range words {
		wWidth := runewidth.StringWidth(w.Text)
		if i > 0 {
			if width > 0 && col+1+wWidth > width {
				b.WriteString("\n")
				col = 0
			} else {
				b.WriteString(" ")
				col++
			}
		}
		b.WriteString(w.Style.Render(w.Text))
		col += wWidth
	}
	return b.String()
}
