package views

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/tolk/internal/align"
	"github.com/f3rmion/tolk/internal/api"
	"github.com/f3rmion/tolk/internal/library"
	"github.com/f3rmion/tolk/internal/study"
	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	translation *tolk.Translation
	requests    []api.TranslateRequest
	known       map[string]bool
	added       []string
	rated       []tolk.Rating
	due         []tolk.DueCard
	vocabulary  []tolk.VocabularyEntry
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{known: map[string]bool{"fisk": true}}
}

func (f *fakeBackend) Translate(_ context.Context, req api.TranslateRequest) (*tolk.Translation, error) {
	f.requests = append(f.requests, req)
	if f.translation == nil {
		return nil, errors.New("translation service down")
	}
	return f.translation, nil
}

func (f *fakeBackend) LookupDictionary(_ context.Context, word, _ string) (string, error) {
	return "dict:" + word, nil
}

func (f *fakeBackend) LookupVocabulary(_ context.Context, word, language string) (*tolk.VocabularyEntry, error) {
	if !f.known[word] {
		return nil, api.ErrNotFound
	}
	return &tolk.VocabularyEntry{Word: word, Language: language}, nil
}

func (f *fakeBackend) AddWord(_ context.Context, word, _, translation string) error {
	f.added = append(f.added, word+"="+translation)
	f.known[word] = true
	return nil
}

func (f *fakeBackend) UpdateRating(_ context.Context, _, _ string, r tolk.Rating) error {
	f.rated = append(f.rated, r)
	return nil
}

func (f *fakeBackend) DueCards(context.Context) ([]tolk.DueCard, error) {
	return f.due, nil
}

func (f *fakeBackend) Vocabulary(context.Context) ([]tolk.VocabularyEntry, error) {
	return f.vocabulary, nil
}

type fakeLibrary struct {
	texts []library.Text
}

func (f *fakeLibrary) List() ([]library.Text, error) { return f.texts, nil }

func (f *fakeLibrary) Get(id string) (library.Text, error) {
	for _, t := range f.texts {
		if t.ID == id {
			return t, nil
		}
	}
	return library.Text{}, library.ErrNotFound
}

func (f *fakeLibrary) Create(title, content, lang string) (library.Text, error) {
	t := library.Text{ID: fmt.Sprint(len(f.texts) + 1), Title: title, Content: content, SourceLang: lang, CreatedAt: time.Now()}
	f.texts = append(f.texts, t)
	return t, nil
}

func (f *fakeLibrary) Delete(id string) error {
	for i, t := range f.texts {
		if t.ID == id {
			f.texts = append(f.texts[:i], f.texts[i+1:]...)
			return nil
		}
	}
	return library.ErrNotFound
}

// run executes cmd and returns the messages it produced, descending into
// batches.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// settleReader feeds cmd's messages, and their follow-ups, to the reader.
func settleReader(m ReaderModel, cmd tea.Cmd) ReaderModel {
	queue := run(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		var next tea.Cmd
		m, next = m.Update(msg)
		queue = append(queue, run(next)...)
	}
	return m
}

func readerTranslation() *tolk.Translation {
	return &tolk.Translation{
		OriginalText:   "Hunden äter fisk. Katten sover.",
		TranslatedText: "The dog eats fish. The cat sleeps.",
		Sentences: []tolk.Sentence{
			{
				Original:     "Hunden äter fisk.",
				Translated:   "The dog eats fish.",
				SourceTokens: []string{"Hunden", "äter", "fisk"},
				TargetTokens: []string{"The", "dog", "eats", "fish"},
				Alignment:    []align.Pair{{Source: 0, Target: 1}, {Source: 1, Target: 2}, {Source: 2, Target: 3}},
				WordInfo:     []tolk.WordInfo{{OriginalWord: "hund"}},
			},
			{
				Original:     "Katten sover.",
				Translated:   "The cat sleeps.",
				SourceTokens: []string{"Katten", "sover"},
				TargetTokens: []string{"The", "cat", "sleeps"},
				Alignment:    []align.Pair{{Source: 0, Target: 1}, {Source: 1, Target: 2}},
			},
		},
	}
}

func newReader(backend *fakeBackend) ReaderModel {
	m := NewReaderModel(backend, ReaderOptions{
		DefaultLanguage: "sv",
		TargetLanguage:  "en",
		Palette:         align.DefaultPalette,
		Logger:          zerolog.Nop(),
	})
	m.SetSize(80, 30)
	return m
}

func openedReader(t *testing.T, backend *fakeBackend) ReaderModel {
	t.Helper()
	m := newReader(backend)
	cmd := m.Open(library.Text{ID: "1", Title: "Djur", Content: "Hunden äter fisk. Katten sover.", SourceLang: "SV"})
	m = settleReader(m, cmd)
	require.NotNil(t, m.Document())
	return m
}

func TestReader_OpenTranslatesAndMounts(t *testing.T) {
	backend := newFakeBackend()
	backend.translation = readerTranslation()

	m := openedReader(t, backend)

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.Equal(t, "SV", req.SourceLanguage)
	assert.Equal(t, "en", req.TargetLanguage)
	assert.True(t, req.SplitSentences)
	assert.True(t, req.MarkWords)

	c := m.focused()
	require.NotNil(t, c)
	assert.Equal(t, "hund", c.Word())
	assert.Equal(t, "sv", c.Language())
	assert.Equal(t, "dict:hund", c.State().DictionaryTranslation)
	assert.Contains(t, m.View(), "dict:hund")
}

func TestReader_NavigateAndAddWord(t *testing.T) {
	backend := newFakeBackend()
	backend.translation = readerTranslation()
	m := openedReader(t, backend)

	m, _ = m.Update(key("l"))
	m, _ = m.Update(key("l"))
	c := m.focused()
	require.NotNil(t, c)
	assert.Equal(t, "fisk", c.Word())
	assert.True(t, c.State().IsKnown)
	m, cmd := m.Update(key("a"))
	assert.Nil(t, cmd, "known words cannot be added")

	m, _ = m.Update(key("l"))
	s, tok := m.Focus()
	assert.Equal(t, 1, s)
	assert.Equal(t, 0, tok)

	m, cmd = m.Update(key("a"))
	m = settleReader(m, cmd)
	assert.Equal(t, []string{"Katten=dict:Katten"}, backend.added)
	assert.True(t, m.focused().State().IsKnown)

	m, cmd = m.Update(key("3"))
	m = settleReader(m, cmd)
	assert.Equal(t, []tolk.Rating{tolk.Good}, backend.rated)

	m, _ = m.Update(key("h"))
	s, tok = m.Focus()
	assert.Equal(t, 0, s)
	assert.Equal(t, 2, tok)
}

func TestReader_ToggleHints(t *testing.T) {
	backend := newFakeBackend()
	backend.translation = readerTranslation()
	m := openedReader(t, backend)

	m, cmd := m.Update(key("w"))
	assert.Nil(t, cmd)
	assert.Nil(t, m.focused(), "tokens are static without hints")
	m, cmd = m.Update(key("a"))
	assert.Nil(t, cmd)

	m, cmd = m.Update(key("w"))
	require.NotNil(t, cmd, "hints back on remounts")
	m = settleReader(m, cmd)
	require.NotNil(t, m.focused())
	assert.Equal(t, "dict:hund", m.focused().State().DictionaryTranslation)

	m, _ = m.Update(key("t"))
	assert.False(t, m.Document().Toggles().ShowTranslation)
	assert.NotNil(t, m.focused(), "hiding translation keeps controllers")
}

func TestReader_StaleTranslationIgnored(t *testing.T) {
	backend := newFakeBackend()
	backend.translation = readerTranslation()
	m := newReader(backend)

	first := m.Open(library.Text{ID: "1", Title: "one", Content: "x"})
	second := m.Open(library.Text{ID: "2", Title: "two", Content: "y"})

	m, _ = m.Update(first())
	assert.Nil(t, m.Document())

	m = settleReader(m, second)
	assert.NotNil(t, m.Document())
}

func TestReader_TranslationFailure(t *testing.T) {
	m := newReader(newFakeBackend())
	m = settleReader(m, m.Open(library.Text{ID: "1", Title: "one", Content: "x"}))

	assert.Nil(t, m.Document())
	assert.Contains(t, m.View(), "translation service down")
}

func TestReader_Fallback(t *testing.T) {
	backend := newFakeBackend()
	backend.translation = &tolk.Translation{TranslatedText: "Only the whole text."}
	m := openedReader(t, backend)

	assert.Contains(t, m.View(), "Only the whole text.")
	m, _ = m.Update(key("l"))
	assert.Nil(t, m.focused())
}

func TestStudy_Session(t *testing.T) {
	backend := newFakeBackend()
	backend.due = []tolk.DueCard{
		{Word: "hund", Language: "sv"},
		{Word: "Katze", Language: "de"},
	}
	m := NewStudyModel(backend, "", zerolog.Nop())
	m.SetSize(80, 30)

	m, _ = m.Update(m.Init()())
	card, ok := m.Cursor().Current()
	require.True(t, ok)
	assert.Equal(t, "hund", card.Word)

	_, cmd := m.Update(key("3"))
	assert.Nil(t, cmd, "answer must be shown before rating")

	m, _ = m.Update(key(" "))
	assert.True(t, m.Cursor().Revealed())

	m, cmd = m.Update(key("4"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(study.RatedMsg)
	require.True(t, ok)
	m, _ = m.Update(msg)
	assert.Equal(t, []tolk.Rating{tolk.Easy}, backend.rated)

	card, _ = m.Cursor().Current()
	assert.Equal(t, "Katze", card.Word)

	m, _ = m.Update(key("f"))
	assert.Equal(t, "sv", m.Cursor().LanguageFilter())
	m, _ = m.Update(key("f"))
	assert.Equal(t, "de", m.Cursor().LanguageFilter())
	m, _ = m.Update(key("f"))
	assert.Equal(t, "", m.Cursor().LanguageFilter())
}

func TestStudy_InitialFilter(t *testing.T) {
	backend := newFakeBackend()
	backend.due = []tolk.DueCard{{Word: "hund", Language: "sv"}, {Word: "Katze", Language: "de"}}
	m := NewStudyModel(backend, "DE", zerolog.Nop())

	m, _ = m.Update(m.Init()())
	card, ok := m.Cursor().Current()
	require.True(t, ok)
	assert.Equal(t, "Katze", card.Word)
}

func TestLibrary_ListAndOpen(t *testing.T) {
	lib := &fakeLibrary{}
	lib.Create("Nyheter", "Det regnar.", "SV")
	lib.Create("Sagor", "Det var en gång.", "SV")

	m := NewLibraryModel(lib, "sv", zerolog.Nop())
	m.SetSize(80, 30)
	m, _ = m.Update(m.Init()())
	require.Len(t, m.Texts(), 2)

	m, _ = m.Update(key("j"))
	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	open, ok := cmd().(OpenTextMsg)
	require.True(t, ok)
	assert.Equal(t, "Sagor", open.Text.Title)
}

func TestLibrary_FormRequiresContent(t *testing.T) {
	lib := &fakeLibrary{}
	m := NewLibraryModel(lib, "sv", zerolog.Nop())
	m.SetSize(80, 30)

	m, _ = m.Update(key("n"))
	assert.True(t, m.Editing())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.formErr, library.ErrEmptyContent)
	assert.Empty(t, lib.texts)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Editing())
}

func TestLibrary_Delete(t *testing.T) {
	lib := &fakeLibrary{}
	lib.Create("Nyheter", "Det regnar.", "SV")
	m := NewLibraryModel(lib, "sv", zerolog.Nop())
	m, _ = m.Update(m.Init()())

	m, _ = m.Update(key("d"))
	m, cmd := m.Update(key("y"))
	require.NotNil(t, cmd)
	m, cmd = m.Update(cmd())
	m, _ = m.Update(cmd())
	assert.Empty(t, m.Texts())
}

func TestVocab_Filter(t *testing.T) {
	backend := newFakeBackend()
	fish := "fish"
	backend.vocabulary = []tolk.VocabularyEntry{
		{Word: "fisk", Language: "sv", Translation: &fish},
		{Word: "Hund", Language: "de"},
		{Word: "hund", Language: "sv"},
	}
	m := NewVocabModel(backend, "", zerolog.Nop())
	m.SetSize(100, 30)
	m, _ = m.Update(m.Init()())
	assert.Len(t, m.Visible(), 3)

	m, _ = m.Update(key("f"))
	assert.Len(t, m.Visible(), 2)
	m, _ = m.Update(key("f"))
	require.Len(t, m.Visible(), 1)
	assert.Equal(t, "Hund", m.Visible()[0].Word)

	assert.Contains(t, m.View(), "Hund")
}

func TestNextFilter(t *testing.T) {
	langs := []string{"sv", "de"}
	assert.Equal(t, "sv", nextFilter(langs, ""))
	assert.Equal(t, "de", nextFilter(langs, "SV"))
	assert.Equal(t, "", nextFilter(langs, "de"))
	assert.Equal(t, "", nextFilter(langs, "fr"))
	assert.Equal(t, "", nextFilter(nil, ""))
}

func TestRatingKey(t *testing.T) {
	assert.Equal(t, tolk.Again, ratingKey("1"))
	assert.Equal(t, tolk.Easy, ratingKey("4"))
	assert.False(t, ratingKey("5").IsValid())
	assert.False(t, ratingKey("a").IsValid())
}

func TestColumnWidths_ShrinksTranslation(t *testing.T) {
	header := []string{"Word", "Lang", "Translation"}
	rows := [][]string{{"fisk", "sv", "a very long translation that does not fit"}}

	widths := columnWidths(header, rows, 30)
	assert.Equal(t, []int{4, 4, 20}, widths)
	assert.Equal(t, "fisk sv   a very long transla…", formatRow(rows[0], widths))
}
