// Package render turns translated sentences into displayable lines: colored
// source and target tokens, per-token annotation controllers and the reader's
// display switches.
package render

// Toggles are the reader's display switches. They only change what is drawn.
type Toggles struct {
	ShowTranslation bool // draw the target line under each sentence
	ShowWordHints   bool // interactive source tokens with known-word highlight
	ColorMatching   bool // color aligned tokens
}

// DefaultToggles has every switch on.
func DefaultToggles() Toggles {
	return Toggles{
		ShowTranslation: true,
		ShowWordHints:   true,
		ColorMatching:   true,
	}
}
