// Package study walks a queue of due review cards.
package study

import (
	"context"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/rs/zerolog"
)

// Service submits review ratings.
type Service interface {
	UpdateRating(ctx context.Context, word, language string, rating tolk.Rating) error
}

var generations atomic.Uint64

// RatedMsg reports the outcome of rating the card at Index.
type RatedMsg struct {
	Gen    uint64
	Index  int
	Card   tolk.DueCard
	Rating tolk.Rating
	Err    error
}

// Cursor is a study session: the due cards, an optional language filter and
// the position within the filtered cards.
type Cursor struct {
	svc Service
	log zerolog.Logger

	cards    []tolk.DueCard
	filter   string
	filtered []tolk.DueCard
	index    int
	revealed bool
	pending  bool
	gen      uint64
}

// NewCursor returns an empty session.
func NewCursor(svc Service, log zerolog.Logger) *Cursor {
	return &Cursor{svc: svc, log: log, gen: generations.Add(1)}
}

// Load replaces the due cards and starts from the first one.
func (c *Cursor) Load(cards []tolk.DueCard) {
	c.cards = cards
	c.refilter()
}

// SetLanguageFilter keeps only cards in language, compared case-insensitively.
// An empty language keeps every card. The session restarts at the first card
// with the answer hidden.
func (c *Cursor) SetLanguageFilter(language string) {
	c.filter = strings.TrimSpace(language)
	c.refilter()
}

// LanguageFilter returns the current filter, empty when unfiltered.
func (c *Cursor) LanguageFilter() string { return c.filter }

// Languages returns the distinct lowercase languages of the loaded cards in
// order of first appearance.
func (c *Cursor) Languages() []string {
	var out []string
	seen := make(map[string]bool)
	for _, card := range c.cards {
		lang := strings.ToLower(card.Language)
		if lang == "" || seen[lang] {
			continue
		}
		seen[lang] = true
		out = append(out, lang)
	}
	return out
}

// Reset returns to the first filtered card with the answer hidden.
func (c *Cursor) Reset() {
	c.index = 0
	c.revealed = false
	c.pending = false
	c.gen = generations.Add(1)
}

func (c *Cursor) refilter() {
	c.filtered = c.filtered[:0]
	for _, card := range c.cards {
		if c.filter == "" || strings.EqualFold(card.Language, c.filter) {
			c.filtered = append(c.filtered, card)
		}
	}
	c.Reset()
}

// Current returns the card under the cursor. ok is false once the session
// is finished or when nothing matches the filter.
func (c *Cursor) Current() (card tolk.DueCard, ok bool) {
	if c.index >= len(c.filtered) {
		return tolk.DueCard{}, false
	}
	return c.filtered[c.index], true
}

// Position returns the 1-based number of the current card and the number of
// cards in the filtered session.
func (c *Cursor) Position() (current, total int) {
	total = len(c.filtered)
	current = c.index + 1
	if current > total {
		current = total
	}
	return current, total
}

// Done reports whether every filtered card has been rated.
func (c *Cursor) Done() bool {
	_, ok := c.Current()
	return !ok
}

// RevealAnswer shows the current card's translation.
func (c *Cursor) RevealAnswer() {
	if _, ok := c.Current(); ok {
		c.revealed = true
	}
}

// Revealed reports whether the answer is shown.
func (c *Cursor) Revealed() bool { return c.revealed }

// Pending reports whether a rating is in flight.
func (c *Cursor) Pending() bool { return c.pending }

// Rate submits a rating for the current card. It returns nil when there is
// no current card, the rating is invalid or a rating is already in flight.
func (c *Cursor) Rate(rating tolk.Rating) tea.Cmd {
	card, ok := c.Current()
	if !ok || c.pending || !rating.IsValid() {
		return nil
	}
	c.pending = true

	svc, gen, index := c.svc, c.gen, c.index
	return func() tea.Msg {
		err := svc.UpdateRating(context.Background(), card.Word, strings.ToLower(card.Language), rating)
		return RatedMsg{Gen: gen, Index: index, Card: card, Rating: rating, Err: err}
	}
}

// Apply folds a rating outcome into the session. A success hides the answer
// and moves to the next card. A failure leaves the session where it was.
// Outcomes from before the last filter change or reset are ignored.
func (c *Cursor) Apply(msg RatedMsg) {
	if msg.Gen != c.gen || msg.Index != c.index {
		c.log.Debug().Uint64("gen", msg.Gen).Int("index", msg.Index).Msg("discarding stale rating")
		return
	}
	c.pending = false

	if msg.Err != nil {
		c.log.Error().Err(msg.Err).
			Str("word", msg.Card.Word).
			Str("language", msg.Card.Language).
			Str("rating", msg.Rating.String()).
			Msg("rating failed")
		return
	}

	c.revealed = false
	c.index++
}
