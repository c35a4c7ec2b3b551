// Package align colors aligned source and target tokens so that words which
// translate each other share a color.
package align

import (
	"encoding/json"
	"fmt"
)

// Color is a terminal color value, as understood by lipgloss.Color.
type Color string

// Palette is the ordered set of colors handed out to alignment groups.
// Colors are reused from the start once the palette is exhausted.
type Palette []Color

// DefaultPalette is tuned for dark terminal backgrounds.
var DefaultPalette = Palette{
	"#f87171", // red
	"#60a5fa", // blue
	"#4ade80", // green
	"#facc15", // yellow
	"#c084fc", // purple
	"#f472b6", // pink
	"#fb923c", // orange
	"#34d399", // emerald
	"#22d3ee", // cyan
	"#818cf8", // indigo
	"#e879f9", // fuchsia
}

// NoSlot marks a token that has no color.
const NoSlot = -1

// Pair links a source token index to a target token index.
// On the wire it is a two element array: [source, target].
type Pair struct {
	Source int
	Target int
}

// MarshalJSON encodes the pair as [source, target].
func (p Pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.Source, p.Target})
}

// UnmarshalJSON decodes a [source, target] array.
func (p *Pair) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding alignment pair: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("alignment pair has %d elements, want 2", len(raw))
	}
	p.Source, p.Target = raw[0], raw[1]
	return nil
}

// Token is one colored entry of an output sequence. Index is the position in
// the input token list.
type Token struct {
	Index int
	Text  string
	Slot  int   // palette position, NoSlot when uncolored
	Color Color // empty when uncolored
}

// Colored reports whether the token carries a color.
func (t Token) Colored() bool {
	return t.Slot != NoSlot
}

// Plain returns the tokens with no colors assigned.
func Plain(tokens []string) []Token {
	out := make([]Token, len(tokens))
	for i, text := range tokens {
		out[i] = Token{Index: i, Text: text, Slot: NoSlot}
	}
	return out
}

// Colorize assigns palette colors to source and target tokens following the
// alignment pairs in the order given. The outputs always have the same length
// as their inputs.
//
// For each pair:
//   - out of range indices on either side skip the pair;
//   - if neither token is colored, both get the next palette color;
//   - if one token is colored, the other takes the same color;
//   - if both are colored, nothing changes, even when the colors differ.
//
// Many-to-many alignments can therefore end up with tokens of one group in
// different colors.
func Colorize(source, target []string, pairs []Pair, palette Palette) ([]Token, []Token) {
	src := Plain(source)
	trg := Plain(target)
	if len(palette) == 0 {
		return src, trg
	}

	next := 0
	for _, p := range pairs {
		if p.Source < 0 || p.Source >= len(src) || p.Target < 0 || p.Target >= len(trg) {
			continue
		}

		s, t := &src[p.Source], &trg[p.Target]
		switch {
		case !s.Colored() && !t.Colored():
			slot := next % len(palette)
			s.Slot, s.Color = slot, palette[slot]
			t.Slot, t.Color = slot, palette[slot]
			next++
		case s.Colored() && !t.Colored():
			t.Slot, t.Color = s.Slot, s.Color
		case !s.Colored() && t.Colored():
			s.Slot, s.Color = t.Slot, t.Color
		}
	}

	return src, trg
}
