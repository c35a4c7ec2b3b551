package render

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/tolk/internal/align"
	"github.com/f3rmion/tolk/internal/annotate"
	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct{}

func (stubService) LookupDictionary(context.Context, string, string) (string, error) {
	return "translation", nil
}

func (stubService) LookupVocabulary(_ context.Context, word, language string) (*tolk.VocabularyEntry, error) {
	return &tolk.VocabularyEntry{Word: word, Language: language}, nil
}

func (stubService) AddWord(context.Context, string, string, string) error { return nil }

func (stubService) UpdateRating(context.Context, string, string, tolk.Rating) error { return nil }

var testPalette = align.Palette{"red", "blue", "green"}

func testSentence() tolk.Sentence {
	return tolk.Sentence{
		Original:     "Jag äter fisk",
		Translated:   "I eat fish",
		SourceTokens: []string{"Jag", "äter", "fisk"},
		TargetTokens: []string{"I", "eat", "fish"},
		Alignment:    []align.Pair{{Source: 0, Target: 0}, {Source: 1, Target: 1}, {Source: 2, Target: 2}},
		WordInfo: []tolk.WordInfo{
			{OriginalWord: "Jag"},
			{OriginalWord: "äter", FoundInVocabulary: true},
		},
	}
}

func testOptions() Options {
	return Options{Language: "sv", Palette: testPalette, Service: stubService{}, Logger: zerolog.Nop()}
}

func drain(cmd tea.Cmd) []annotate.Msg {
	if cmd == nil {
		return nil
	}
	var out []annotate.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, drain(c)...)
		}
	case annotate.Msg:
		out = append(out, msg)
	}
	return out
}

func sourceSlots(l Layout) []int {
	out := make([]int, len(l.Source))
	for i, t := range l.Source {
		out[i] = t.Slot
	}
	return out
}

func TestLayout_ColorMatching(t *testing.T) {
	s := NewSentence(0, testSentence(), testOptions())

	on := s.Layout(DefaultToggles())
	assert.Equal(t, []int{0, 1, 2}, sourceSlots(on))
	require.Len(t, on.Target, 3)
	assert.Equal(t, align.Color("blue"), on.Target[1].Color)

	toggles := DefaultToggles()
	toggles.ColorMatching = false
	off := s.Layout(toggles)
	assert.Equal(t, []int{align.NoSlot, align.NoSlot, align.NoSlot}, sourceSlots(off))
	assert.False(t, off.Target[0].Colored())

	again := s.Layout(DefaultToggles())
	assert.Equal(t, on.Source[2].Color, again.Source[2].Color, "colors recomputed identically")
}

func TestLayout_HiddenTranslationKeepsSource(t *testing.T) {
	s := NewSentence(0, testSentence(), testOptions())
	s.Mount()

	shown := s.Layout(DefaultToggles())

	toggles := DefaultToggles()
	toggles.ShowTranslation = false
	hidden := s.Layout(toggles)

	assert.False(t, hidden.ShowTarget)
	assert.Nil(t, hidden.Target)
	assert.Nil(t, hidden.TargetWords())
	assert.Equal(t, sourceSlots(shown), sourceSlots(hidden))
	for i := range shown.Source {
		assert.Same(t, shown.Source[i].Controller, hidden.Source[i].Controller)
	}
}

func TestLayout_StaticTokensWithoutHints(t *testing.T) {
	s := NewSentence(0, testSentence(), testOptions())
	s.Mount()

	toggles := DefaultToggles()
	toggles.ShowWordHints = false
	l := s.Layout(toggles)

	for _, tok := range l.Source {
		assert.False(t, tok.Interactive())
		assert.False(t, tok.Known())
	}
	assert.True(t, l.Source[1].Colored(), "static spans keep their color")
}

func TestLayout_SeededKnownWord(t *testing.T) {
	s := NewSentence(0, testSentence(), testOptions())
	s.Mount()

	l := s.Layout(DefaultToggles())

	assert.False(t, l.Source[0].Known())
	assert.True(t, l.Source[1].Known())
	assert.False(t, l.Source[2].Known(), "missing word info defaults to unknown")
}

func TestSetAlignment_Recomputes(t *testing.T) {
	s := NewSentence(0, testSentence(), testOptions())
	before := s.Layout(DefaultToggles())
	assert.Equal(t, []int{0, 1, 2}, sourceSlots(before))

	s.SetAlignment([]align.Pair{{Source: 2, Target: 0}, {Source: 0, Target: 9}})
	after := s.Layout(DefaultToggles())

	assert.Equal(t, []int{align.NoSlot, align.NoSlot, 0}, sourceSlots(after))
}

func TestDocument_HintsToggleRemountsControllers(t *testing.T) {
	doc := NewDocument(&tolk.Translation{Sentences: []tolk.Sentence{testSentence(), testSentence()}}, testOptions())

	first := drain(doc.Mount())
	require.Len(t, first, 12, "two lookups per token")

	toggles := doc.Toggles()
	toggles.ShowWordHints = false
	assert.Nil(t, doc.SetToggles(toggles))
	for _, msg := range first {
		assert.Nil(t, doc.Apply(msg))
	}
	ctrl := doc.Sentence(1).Controller(2)
	assert.False(t, ctrl.Mounted())
	assert.Equal(t, "", ctrl.State().DictionaryTranslation, "late responses dropped")

	toggles.ShowWordHints = true
	second := drain(doc.SetToggles(toggles))
	require.Len(t, second, 12)

	for _, msg := range first {
		doc.Apply(msg)
	}
	assert.True(t, ctrl.State().IsLoadingDictionary(), "responses to the old mount still dropped")

	for _, msg := range second {
		doc.Apply(msg)
	}
	assert.Equal(t, "translation", ctrl.State().DictionaryTranslation)
	assert.True(t, doc.Layout(1).Source[2].Known())
}

func TestDocument_OtherTogglesKeepControllers(t *testing.T) {
	doc := NewDocument(&tolk.Translation{Sentences: []tolk.Sentence{testSentence()}}, testOptions())
	doc.Mount()
	gen := doc.Sentence(0).Controller(0).Generation()

	assert.Nil(t, doc.SetToggles(Toggles{ShowWordHints: true}))
	assert.Equal(t, gen, doc.Sentence(0).Controller(0).Generation())
}

func TestDocument_Fallback(t *testing.T) {
	doc := NewDocument(&tolk.Translation{TranslatedText: "I eat fish."}, testOptions())

	text, ok := doc.Fallback()
	assert.True(t, ok)
	assert.Equal(t, "I eat fish.", text)
	assert.Nil(t, doc.Mount())
	assert.Equal(t, Layout{}, doc.Layout(0))
}

func TestDocument_ApplyUnknownSentence(t *testing.T) {
	doc := NewDocument(&tolk.Translation{Sentences: []tolk.Sentence{testSentence()}}, testOptions())
	assert.Nil(t, doc.Apply(annotate.DictionaryMsg{Key: annotate.Key{Sentence: 4}}))
	assert.Nil(t, doc.Apply(annotate.DictionaryMsg{Key: annotate.Key{Sentence: 0, Token: 40}}))
}

func TestLine_Wraps(t *testing.T) {
	plain := lipgloss.NewStyle()
	words := []Word{{"Det", plain}, {"regnar", plain}, {"i", plain}, {"Stockholm", plain}}

	assert.Equal(t, "Det regnar i Stockholm", Line(words, 0))
	assert.Equal(t, "Det regnar i\nStockholm", Line(words, 14))
	assert.Equal(t, "", Line(nil, 10))
}

func TestLine_WideRunes(t *testing.T) {
	plain := lipgloss.NewStyle()
	words := []Word{{"我", plain}, {"吃", plain}, {"鱼", plain}}

	assert.Equal(t, "我 吃\n鱼", Line(words, 5))
}
