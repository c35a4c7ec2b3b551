package annotate

import (
	"context"
	"errors"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/tolk/internal/api"
	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	dictionary    string
	dictionaryErr error
	entry         *tolk.VocabularyEntry
	vocabularyErr error
	addErr        error
	rateErr       error

	added []string // translations sent with AddWord
	rated []tolk.Rating
}

func (f *fakeService) LookupDictionary(_ context.Context, _, _ string) (string, error) {
	return f.dictionary, f.dictionaryErr
}

func (f *fakeService) LookupVocabulary(_ context.Context, _, _ string) (*tolk.VocabularyEntry, error) {
	if f.vocabularyErr != nil {
		return nil, f.vocabularyErr
	}
	if f.entry == nil {
		return nil, &api.StatusError{Status: http.StatusNotFound}
	}
	e := *f.entry
	return &e, nil
}

func (f *fakeService) AddWord(_ context.Context, word, language, translation string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, translation)
	tr := translation
	f.entry = &tolk.VocabularyEntry{Word: word, Language: language, Translation: &tr, State: tolk.StateLearning}
	return nil
}

func (f *fakeService) UpdateRating(_ context.Context, _, _ string, r tolk.Rating) error {
	if f.rateErr != nil {
		return f.rateErr
	}
	f.rated = append(f.rated, r)
	if f.entry != nil {
		f.entry.Stability += 1
		f.entry.State = tolk.StateReview
	}
	return nil
}

// collect runs cmd and every command it batches, returning the messages.
func collect(cmd tea.Cmd) []Msg {
	if cmd == nil {
		return nil
	}
	var out []Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
	case Msg:
		out = append(out, msg)
	}
	return out
}

// settle applies msgs and any follow-up commands until nothing is left.
func settle(c *Controller, msgs []Msg) {
	for len(msgs) > 0 {
		msg := msgs[0]
		msgs = append(msgs[1:], collect(c.Apply(msg))...)
	}
}

func newController(svc Service, info tolk.WordInfo) *Controller {
	return New(Key{Sentence: 0, Token: 1}, "äter", info, "sv", svc, zerolog.Nop())
}

func TestMount_LoadsDictionaryAndVocabulary(t *testing.T) {
	svc := &fakeService{dictionary: "eats"}
	c := newController(svc, tolk.WordInfo{OriginalWord: "äter"})

	cmd := c.Mount()
	assert.True(t, c.State().IsLoadingDictionary())
	assert.Nil(t, c.Mount(), "second mount is a no-op")

	settle(c, collect(cmd))

	s := c.State()
	assert.Equal(t, DictionaryLoaded, s.Dictionary)
	assert.Equal(t, "eats", s.DictionaryTranslation)
	assert.False(t, s.IsKnown)
	assert.Nil(t, s.Entry)
}

func TestDictionary_Placeholders(t *testing.T) {
	tests := []struct {
		name string
		svc  *fakeService
		want string
	}{
		{"transport error", &fakeService{dictionaryErr: errors.New("connection refused")}, LookupFailed},
		{"server error", &fakeService{dictionaryErr: &api.StatusError{Status: 500}}, LookupFailed},
		{"not found", &fakeService{dictionaryErr: &api.StatusError{Status: 404}}, NoTranslation},
		{"empty translation", &fakeService{}, NoTranslation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(tt.svc, tolk.WordInfo{OriginalWord: "äter"})
			settle(c, collect(c.Mount()))

			assert.Equal(t, tt.want, c.State().DictionaryTranslation)
			assert.False(t, c.State().IsLoadingDictionary())
		})
	}
}

func TestSeededFromWordInfo(t *testing.T) {
	tr := "eats"
	entry := &tolk.VocabularyEntry{Word: "äter", Language: "SV", Translation: &tr}
	c := New(Key{}, "Äter", tolk.WordInfo{FoundInVocabulary: true, VocabularyEntry: entry}, "de", &fakeService{}, zerolog.Nop())

	assert.Equal(t, "Äter", c.Word(), "falls back to the token text")
	assert.Equal(t, "sv", c.Language())
	assert.True(t, c.State().IsKnown)
	assert.Equal(t, entry, c.State().Entry)
}

func TestVocabularyLookup_NotFoundOverridesSeed(t *testing.T) {
	svc := &fakeService{}
	c := newController(svc, tolk.WordInfo{OriginalWord: "äter", FoundInVocabulary: true})

	settle(c, collect(c.Mount()))

	assert.False(t, c.State().IsKnown)
	assert.False(t, c.State().VocabularyUnavailable)
}

func TestVocabularyLookup_FailureKeepsSeed(t *testing.T) {
	entry := &tolk.VocabularyEntry{Word: "äter", Language: "sv"}
	svc := &fakeService{vocabularyErr: errors.New("timeout")}
	c := newController(svc, tolk.WordInfo{OriginalWord: "äter", FoundInVocabulary: true, VocabularyEntry: entry})

	settle(c, collect(c.Mount()))

	s := c.State()
	assert.True(t, s.IsKnown)
	assert.Same(t, entry, s.Entry)
	assert.True(t, s.VocabularyUnavailable)
}

func TestAddWord_Success(t *testing.T) {
	svc := &fakeService{dictionary: "eats"}
	c := newController(svc, tolk.WordInfo{OriginalWord: "äter"})
	settle(c, collect(c.Mount()))
	require.False(t, c.State().IsKnown)

	cmd := c.AddWord()
	require.NotNil(t, cmd)
	assert.True(t, c.State().Adding)
	assert.Nil(t, c.AddWord(), "add already in flight")

	settle(c, collect(cmd))

	s := c.State()
	assert.True(t, s.IsKnown)
	assert.False(t, s.Adding)
	require.NotNil(t, s.Entry)
	assert.Equal(t, *svc.entry, *s.Entry, "entry is the re-fetched record")
	assert.Equal(t, []string{"eats"}, svc.added)
}

func TestAddWord_SendsEntryTranslationWhenDictionaryFailed(t *testing.T) {
	svc := &fakeService{dictionaryErr: errors.New("down")}
	c := newController(svc, tolk.WordInfo{OriginalWord: "äter"})
	settle(c, collect(c.Mount()))

	settle(c, collect(c.AddWord()))

	assert.Equal(t, []string{""}, svc.added, "placeholders are never sent as translations")
}

func TestAddWord_FailureStaysUnknown(t *testing.T) {
	svc := &fakeService{addErr: &api.StatusError{Status: 500, Message: "db locked"}}
	c := newController(svc, tolk.WordInfo{OriginalWord: "äter"})
	settle(c, collect(c.Mount()))

	settle(c, collect(c.AddWord()))

	assert.False(t, c.State().IsKnown)
	assert.False(t, c.State().Adding)
	assert.NotNil(t, c.AddWord(), "user can retry")
}

func TestAddWord_OnlyFromUnknown(t *testing.T) {
	svc := &fakeService{entry: &tolk.VocabularyEntry{Word: "äter", Language: "sv"}}
	c := newController(svc, tolk.WordInfo{OriginalWord: "äter"})
	settle(c, collect(c.Mount()))
	require.True(t, c.State().IsKnown)

	assert.Nil(t, c.AddWord())
}

func TestSubmitRating_Success(t *testing.T) {
	svc := &fakeService{entry: &tolk.VocabularyEntry{Word: "äter", Language: "sv", Stability: 1}}
	c := newController(svc, tolk.WordInfo{OriginalWord: "äter"})
	settle(c, collect(c.Mount()))

	settle(c, collect(c.SubmitRating(tolk.Good)))

	s := c.State()
	assert.True(t, s.IsKnown)
	assert.Equal(t, 2.0, s.Entry.Stability, "scheduling fields refreshed")
	assert.Equal(t, tolk.StateReview, s.Entry.State)
	assert.Equal(t, []tolk.Rating{tolk.Good}, svc.rated)
}

func TestSubmitRating_FailureLeavesStateUnchanged(t *testing.T) {
	svc := &fakeService{entry: &tolk.VocabularyEntry{Word: "äter", Language: "sv", Stability: 1}}
	c := newController(svc, tolk.WordInfo{OriginalWord: "äter"})
	settle(c, collect(c.Mount()))
	before := c.State()

	svc.rateErr = errors.New("server unavailable")
	settle(c, collect(c.SubmitRating(tolk.Again)))

	after := c.State()
	assert.Equal(t, before.IsKnown, after.IsKnown)
	assert.Equal(t, before.Entry, after.Entry)
	assert.False(t, after.Rating)
	assert.NotNil(t, c.SubmitRating(tolk.Again), "user can retry")
}

func TestSubmitRating_Guards(t *testing.T) {
	c := newController(&fakeService{}, tolk.WordInfo{OriginalWord: "äter"})
	assert.Nil(t, c.SubmitRating(tolk.Good), "not mounted")

	settle(c, collect(c.Mount()))
	assert.Nil(t, c.SubmitRating(tolk.Good), "unknown word")

	known := newController(&fakeService{entry: &tolk.VocabularyEntry{}}, tolk.WordInfo{OriginalWord: "äter"})
	settle(known, collect(known.Mount()))
	assert.Nil(t, known.SubmitRating(tolk.Rating(7)), "invalid rating")
}

func TestStaleResponsesDiscarded(t *testing.T) {
	svc := &fakeService{dictionary: "eats"}
	c := newController(svc, tolk.WordInfo{OriginalWord: "äter"})

	stale := collect(c.Mount())
	c.Unmount()
	settle(c, stale)

	assert.Equal(t, "", c.State().DictionaryTranslation)
	assert.False(t, c.Mounted())

	fresh := collect(c.Mount())
	settle(c, stale)
	assert.True(t, c.State().IsLoadingDictionary(), "old generation still ignored after remount")

	settle(c, fresh)
	assert.Equal(t, "eats", c.State().DictionaryTranslation)
}

func TestApply_WrongKeyIgnored(t *testing.T) {
	c := newController(&fakeService{dictionary: "eats"}, tolk.WordInfo{OriginalWord: "äter"})
	c.Mount()

	c.Apply(DictionaryMsg{Key: Key{Sentence: 9, Token: 9}, Gen: c.Generation(), Translation: "nope"})

	assert.True(t, c.State().IsLoadingDictionary())
}
