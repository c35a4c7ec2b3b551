// Package annotate holds the per-token controller behind a word's popover:
// dictionary lookup, vocabulary membership, adding words and rating them.
//
// A controller never blocks. Every operation returns a tea.Cmd that performs
// the request off the event loop and reports back with a message carrying the
// controller's key and generation. Apply ignores messages whose generation is
// not the controller's current one, so responses that arrive after the token
// was torn down or remounted change nothing.
package annotate

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/tolk/internal/api"
	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/rs/zerolog"
)

// Placeholders stored as the dictionary translation when no real one exists.
const (
	NoTranslation = "(No dictionary translation)"
	LookupFailed  = "(Error fetching translation)"
)

// Service is the set of backend calls a controller makes.
// LookupVocabulary must return an error matching api.ErrNotFound for words
// that are not in the vocabulary.
type Service interface {
	LookupDictionary(ctx context.Context, word, language string) (string, error)
	LookupVocabulary(ctx context.Context, word, language string) (*tolk.VocabularyEntry, error)
	AddWord(ctx context.Context, word, language, translation string) error
	UpdateRating(ctx context.Context, word, language string, rating tolk.Rating) error
}

// Key identifies a token within a rendered document.
type Key struct {
	Sentence int
	Token    int
}

var generations atomic.Uint64

// nextGeneration hands out process-wide unique generations, so a remounted
// controller never matches a response addressed to an earlier mount.
func nextGeneration() uint64 {
	return generations.Add(1)
}

// DictionaryPhase is the dictionary sub-machine's position.
type DictionaryPhase int

const (
	DictionaryIdle DictionaryPhase = iota
	DictionaryLoading
	DictionaryLoaded
)

// State is the annotation state of one token.
type State struct {
	DictionaryTranslation string
	Dictionary            DictionaryPhase
	IsKnown               bool
	Entry                 *tolk.VocabularyEntry

	// VocabularyUnavailable is set when the last vocabulary lookup failed
	// for a reason other than not-found.
	VocabularyUnavailable bool

	Adding bool
	Rating bool
}

// IsLoadingDictionary reports whether the dictionary lookup is in flight.
func (s State) IsLoadingDictionary() bool {
	return s.Dictionary == DictionaryLoading
}

// Controller owns the annotation state of one token.
type Controller struct {
	key      Key
	word     string
	language string
	svc      Service
	log      zerolog.Logger

	gen     uint64
	mounted bool
	state   State
}

// New creates an unmounted controller for a source token. The vocabulary
// state is seeded from the translation service's annotation when present.
// The language of a seeded entry wins over defaultLanguage.
func New(key Key, text string, info tolk.WordInfo, defaultLanguage string, svc Service, log zerolog.Logger) *Controller {
	word := info.OriginalWord
	if word == "" {
		word = text
	}

	language := defaultLanguage
	if info.VocabularyEntry != nil && info.VocabularyEntry.Language != "" {
		language = info.VocabularyEntry.Language
	}
	language = strings.ToLower(language)

	return &Controller{
		key:      key,
		word:     word,
		language: language,
		svc:      svc,
		log:      log.With().Str("word", word).Str("language", language).Logger(),
		state: State{
			IsKnown: info.FoundInVocabulary,
			Entry:   info.VocabularyEntry,
		},
	}
}

// Key returns the token key.
func (c *Controller) Key() Key { return c.key }

// Word returns the word looked up for this token.
func (c *Controller) Word() string { return c.word }

// Language returns the lowercase language code used for requests.
func (c *Controller) Language() string { return c.language }

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

// Mounted reports whether the controller is live.
func (c *Controller) Mounted() bool { return c.mounted }

// Generation returns the current generation. Zero before the first mount.
func (c *Controller) Generation() uint64 { return c.gen }

// Mount makes the controller live under a fresh generation and starts the
// dictionary and vocabulary lookups. Mounting a live controller does nothing.
func (c *Controller) Mount() tea.Cmd {
	if c.mounted {
		return nil
	}
	c.gen = nextGeneration()
	c.mounted = true
	c.state.Dictionary = DictionaryLoading
	c.state.Adding = false
	c.state.Rating = false

	return tea.Batch(c.lookupDictionary(), c.lookupVocabulary())
}

// Unmount tears the controller down. Responses still in flight are dropped
// when they arrive.
func (c *Controller) Unmount() {
	c.mounted = false
	c.gen = nextGeneration()
}

// AddWord adds the token's word to the vocabulary. It does nothing unless the
// controller is mounted, the word is unknown and no add is in flight.
func (c *Controller) AddWord() tea.Cmd {
	if !c.mounted || c.state.IsKnown || c.state.Adding {
		return nil
	}
	c.state.Adding = true

	key, gen, svc := c.key, c.gen, c.svc
	word, language, translation := c.word, c.language, c.bestTranslation()
	return func() tea.Msg {
		err := svc.AddWord(context.Background(), word, language, translation)
		return AddedMsg{Key: key, Gen: gen, Err: err}
	}
}

// SubmitRating sends a review rating for the word. It does nothing unless the
// controller is mounted, the word is known, the rating is valid and no
// rating is in flight.
func (c *Controller) SubmitRating(rating tolk.Rating) tea.Cmd {
	if !c.mounted || !c.state.IsKnown || c.state.Rating || !rating.IsValid() {
		return nil
	}
	c.state.Rating = true

	key, gen, svc := c.key, c.gen, c.svc
	word, language := c.word, c.language
	return func() tea.Msg {
		err := svc.UpdateRating(context.Background(), word, language, rating)
		return RatedMsg{Key: key, Gen: gen, Rating: rating, Err: err}
	}
}

// Apply folds a response into the state. It returns a follow-up command when
// the response requires one (the vocabulary refresh after an add or a rating).
func (c *Controller) Apply(msg Msg) tea.Cmd {
	key, gen := msg.Target()
	if key != c.key || !c.mounted || gen != c.gen {
		c.log.Debug().Uint64("gen", gen).Uint64("live_gen", c.gen).Msg("discarding stale response")
		return nil
	}

	switch msg := msg.(type) {
	case DictionaryMsg:
		c.state.Dictionary = DictionaryLoaded
		switch {
		case errors.Is(msg.Err, api.ErrNotFound):
			c.state.DictionaryTranslation = NoTranslation
		case msg.Err != nil:
			c.log.Warn().Err(msg.Err).Msg("dictionary lookup failed")
			c.state.DictionaryTranslation = LookupFailed
		case msg.Translation == "":
			c.state.DictionaryTranslation = NoTranslation
		default:
			c.state.DictionaryTranslation = msg.Translation
		}

	case VocabularyMsg:
		switch {
		case errors.Is(msg.Err, api.ErrNotFound):
			c.state.IsKnown = false
			c.state.Entry = nil
			c.state.VocabularyUnavailable = false
		case msg.Err != nil:
			c.log.Warn().Err(msg.Err).Msg("vocabulary lookup failed")
			c.state.VocabularyUnavailable = true
		default:
			c.state.IsKnown = true
			c.state.Entry = msg.Entry
			c.state.VocabularyUnavailable = false
		}

	case AddedMsg:
		c.state.Adding = false
		if msg.Err != nil {
			c.log.Error().Err(msg.Err).Msg("adding word failed")
			return nil
		}
		c.state.IsKnown = true
		return c.lookupVocabulary()

	case RatedMsg:
		c.state.Rating = false
		if msg.Err != nil {
			c.log.Error().Err(msg.Err).Str("rating", msg.Rating.String()).Msg("rating failed")
			return nil
		}
		return c.lookupVocabulary()
	}

	return nil
}

// bestTranslation prefers a loaded dictionary translation, then the
// translation already stored in the vocabulary entry.
func (c *Controller) bestTranslation() string {
	t := c.state.DictionaryTranslation
	if c.state.Dictionary == DictionaryLoaded && t != "" && t != NoTranslation && t != LookupFailed {
		return t
	}
	return c.state.Entry.TranslationText()
}

func (c *Controller) lookupDictionary() tea.Cmd {
	key, gen, svc := c.key, c.gen, c.svc
	word, language := c.word, c.language
	return func() tea.Msg {
		translation, err := svc.LookupDictionary(context.Background(), word, language)
		return DictionaryMsg{Key: key, Gen: gen, Translation: translation, Err: err}
	}
}

func (c *Controller) lookupVocabulary() tea.Cmd {
	key, gen, svc := c.key, c.gen, c.svc
	word, language := c.word, c.language
	return func() tea.Msg {
		entry, err := svc.LookupVocabulary(context.Background(), word, language)
		return VocabularyMsg{Key: key, Gen: gen, Entry: entry, Err: err}
	}
}
