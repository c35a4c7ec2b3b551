package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/tolk/internal/align"
	"github.com/f3rmion/tolk/internal/annotate"
	"github.com/f3rmion/tolk/internal/api"
	"github.com/f3rmion/tolk/internal/clipboard"
	"github.com/f3rmion/tolk/internal/library"
	"github.com/f3rmion/tolk/internal/render"
	"github.com/f3rmion/tolk/internal/romanize"
	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/rs/zerolog"
)

type translatedMsg struct {
	request     int
	translation *tolk.Translation
	err         error
}

// ReaderOptions configure the reader.
type ReaderOptions struct {
	DefaultLanguage string // used when a text has no source language
	TargetLanguage  string
	Palette         align.Palette
	Logger          zerolog.Logger
}

// ReaderModel shows a translated text sentence by sentence with interactive
// source tokens.
type ReaderModel struct {
	backend Backend
	opts    ReaderOptions
	reader  *romanize.Reader
	log     zerolog.Logger

	text    library.Text
	hasText bool

	request     int
	translating bool
	err         error

	doc     *render.Document
	toggles render.Toggles

	sentence int
	token    int

	status   string
	statusID int

	width  int
	height int
}

// NewReaderModel creates an empty reader.
func NewReaderModel(backend Backend, opts ReaderOptions) ReaderModel {
	return ReaderModel{
		backend: backend,
		opts:    opts,
		reader:  romanize.NewReader(),
		log:     opts.Logger,
		toggles: render.DefaultToggles(),
	}
}

// SetSize updates the view dimensions.
func (m *ReaderModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Document returns the open document, nil while nothing is translated.
func (m ReaderModel) Document() *render.Document { return m.doc }

// Focus returns the focused sentence and token.
func (m ReaderModel) Focus() (sentence, token int) { return m.sentence, m.token }

// Open tears down the current document and requests a translation of text.
func (m *ReaderModel) Open(text library.Text) tea.Cmd {
	if m.doc != nil {
		m.doc.Unmount()
		m.doc = nil
	}
	m.text = text
	m.hasText = true
	m.sentence, m.token = 0, 0
	return m.translate()
}

func (m *ReaderModel) translate() tea.Cmd {
	m.request++
	m.translating = true
	m.err = nil

	backend, request := m.backend, m.request
	req := api.TranslateRequest{
		Text:           m.text.Content,
		SourceLanguage: m.sourceLanguage(),
		TargetLanguage: m.opts.TargetLanguage,
		SplitSentences: true,
		MarkWords:      true,
	}
	m.log.Info().Str("text", m.text.ID).Str("source", req.SourceLanguage).Msg("translating")
	return func() tea.Msg {
		tr, err := backend.Translate(context.Background(), req)
		return translatedMsg{request: request, translation: tr, err: err}
	}
}

func (m ReaderModel) sourceLanguage() string {
	if m.text.SourceLang != "" {
		return m.text.SourceLang
	}
	return m.opts.DefaultLanguage
}

// Update handles messages.
func (m ReaderModel) Update(msg tea.Msg) (ReaderModel, tea.Cmd) {
	switch msg := msg.(type) {
	case OpenTextMsg:
		return m, m.Open(msg.Text)

	case translatedMsg:
		if msg.request != m.request {
			return m, nil
		}
		m.translating = false
		if msg.err != nil {
			m.err = msg.err
			m.log.Error().Err(msg.err).Str("text", m.text.ID).Msg("translation failed")
			return m, nil
		}
		m.doc = render.NewDocument(msg.translation, render.Options{
			Language: strings.ToLower(m.sourceLanguage()),
			Palette:  m.opts.Palette,
			Service:  m.backend,
			Logger:   m.log,
		})
		m.doc.SetToggles(m.toggles)
		return m, m.doc.Mount()

	case annotate.Msg:
		if m.doc == nil {
			return m, nil
		}
		return m, m.doc.Apply(msg)

	case clipboard.CopiedMsg:
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Msg("copy failed")
			return m.setStatus("Copy failed: " + msg.Err.Error())
		}
		return m.setStatus("Copied translation")

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m ReaderModel) setStatus(s string) (ReaderModel, tea.Cmd) {
	m.status = s
	m.statusID++
	return m, clearStatusAfter(m.statusID, 2*time.Second)
}

func (m ReaderModel) handleKey(msg tea.KeyMsg) (ReaderModel, tea.Cmd) {
	if msg.String() == "r" && m.hasText && !m.translating {
		if m.doc != nil {
			m.doc.Unmount()
			m.doc = nil
		}
		return m, m.translate()
	}
	if m.doc == nil {
		return m, nil
	}

	switch msg.String() {
	case "l", "right":
		m.moveToken(1)
	case "h", "left":
		m.moveToken(-1)
	case "j", "down":
		m.moveSentence(1)
	case "k", "up":
		m.moveSentence(-1)
	case "t":
		return m.toggle(func(t *render.Toggles) { t.ShowTranslation = !t.ShowTranslation })
	case "w":
		return m.toggle(func(t *render.Toggles) { t.ShowWordHints = !t.ShowWordHints })
	case "c":
		return m.toggle(func(t *render.Toggles) { t.ColorMatching = !t.ColorMatching })
	case "a":
		if c := m.focused(); c != nil {
			return m, c.AddWord()
		}
	case "1", "2", "3", "4":
		if c := m.focused(); c != nil {
			return m, c.SubmitRating(ratingKey(msg.String()))
		}
	case "y":
		if s := m.doc.Sentence(m.sentence); s != nil {
			return m, clipboard.Copy(s.Data().Translated)
		}
		if text, ok := m.doc.Fallback(); ok {
			return m, clipboard.Copy(text)
		}
	}
	return m, nil
}

func (m ReaderModel) toggle(change func(*render.Toggles)) (ReaderModel, tea.Cmd) {
	change(&m.toggles)
	return m, m.doc.SetToggles(m.toggles)
}

// focused returns the live controller under the cursor, or nil when the
// token is static.
func (m ReaderModel) focused() *annotate.Controller {
	layout := m.doc.Layout(m.sentence)
	if m.token < 0 || m.token >= len(layout.Source) {
		return nil
	}
	tok := layout.Source[m.token]
	if !tok.Interactive() {
		return nil
	}
	return tok.Controller
}

func (m *ReaderModel) moveToken(delta int) {
	s := m.doc.Sentence(m.sentence)
	if s == nil {
		return
	}
	next := m.token + delta
	switch {
	case next >= s.Len():
		if m.sentence+1 < len(m.doc.Sentences()) {
			m.sentence++
			m.token = 0
		}
	case next < 0:
		if m.sentence > 0 {
			m.sentence--
			m.token = max(m.doc.Sentence(m.sentence).Len()-1, 0)
		}
	default:
		m.token = next
	}
}

func (m *ReaderModel) moveSentence(delta int) {
	next := m.sentence + delta
	if next < 0 || next >= len(m.doc.Sentences()) {
		return
	}
	m.sentence = next
	m.token = min(m.token, max(m.doc.Sentence(next).Len()-1, 0))
}

// View renders the reader.
func (m ReaderModel) View() string {
	var b strings.Builder

	if !m.hasText {
		b.WriteString(titleStyle.Render("Reader"))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("Open a text from the Library to start reading."))
		return b.String()
	}

	b.WriteString(titleStyle.Render(m.text.Title))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%s → %s", strings.ToUpper(m.sourceLanguage()), strings.ToUpper(m.opts.TargetLanguage))))
	b.WriteString("  ")
	b.WriteString(m.renderToggles())
	b.WriteString("\n")
	b.WriteString(divider(m.width))
	b.WriteString("\n")

	switch {
	case m.translating:
		b.WriteString(loadingStyle.Render("Translating..."))
		return b.String()
	case m.err != nil:
		b.WriteString(errorStyle.Render("Translation failed: " + m.err.Error()))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("r: retry"))
		return b.String()
	case m.doc == nil:
		return b.String()
	}

	if text, ok := m.doc.Fallback(); ok {
		b.WriteString(valueStyle.Width(max(m.width-4, 20)).Render(text))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("y: copy • r: retranslate"))
		return b.String()
	}

	popover := m.renderPopover()
	bodyHeight := m.height - 4 - lipgloss.Height(popover)
	b.WriteString(m.renderSentences(bodyHeight))
	b.WriteString(popover)
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(copiedStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("←/→ word • ↑/↓ sentence • t/w/c toggles • a add • 1-4 rate • y copy"))
	return b.String()
}

func (m ReaderModel) renderToggles() string {
	toggle := func(label string, on bool) string {
		if on {
			return toggleOnStyle.Render(label)
		}
		return toggleOffStyle.Render(label)
	}
	return strings.Join([]string{
		toggle("[t]ranslation", m.toggles.ShowTranslation),
		toggle("[w]ord hints", m.toggles.ShowWordHints),
		toggle("[c]olors", m.toggles.ColorMatching),
	}, " ")
}

// renderSentences draws as many sentence blocks as fit in height, keeping
// the focused sentence visible.
func (m ReaderModel) renderSentences(height int) string {
	width := max(m.width-4, 20)
	sentences := m.doc.Sentences()
	blocks := make([]string, len(sentences))
	for i := range sentences {
		layout := m.doc.Layout(i)
		focus := -1
		if i == m.sentence {
			focus = m.token
		}
		block := render.Line(layout.SourceWords(focus), width)
		if target := layout.TargetWords(); target != nil {
			block += "\n" + render.Line(target, width)
		}
		blocks[i] = block + "\n"
	}

	start, used := m.sentence, lipgloss.Height(blocks[m.sentence])
	for start > 0 && used+lipgloss.Height(blocks[start-1]) <= height {
		start--
		used += lipgloss.Height(blocks[start])
	}
	end := m.sentence + 1
	for end < len(blocks) && used+lipgloss.Height(blocks[end]) <= height {
		used += lipgloss.Height(blocks[end])
		end++
	}

	return strings.Join(blocks[start:end], "\n")
}

func (m ReaderModel) renderPopover() string {
	if !m.toggles.ShowWordHints {
		return ""
	}
	c := m.focused()
	if c == nil {
		return ""
	}
	st := c.State()

	var lines []string
	word := valueStyle.Bold(true).Render(c.Word())
	if reading, ok := m.reader.Reading(c.Language(), c.Word()); ok {
		word += "  " + readingStyle.Render(reading)
	}
	lines = append(lines, word)

	if st.IsLoadingDictionary() {
		lines = append(lines, loadingStyle.Render("Loading..."))
	} else {
		lines = append(lines, labelStyle.Render("Dictionary")+valueStyle.Render(st.DictionaryTranslation))
	}

	switch {
	case st.IsKnown:
		lines = append(lines, labelStyle.Render("Vocabulary")+knownStyle.Render("known"))
		if e := st.Entry; e != nil {
			if t := e.TranslationText(); t != "" {
				lines = append(lines, labelStyle.Render("Saved as")+valueStyle.Render(t))
			}
			lines = append(lines, labelStyle.Render("State")+valueStyle.Render(e.State.String()))
			if due := e.Due.Display(); due != "" {
				lines = append(lines, labelStyle.Render("Due")+valueStyle.Render(due))
			}
		}
		if st.Rating {
			lines = append(lines, loadingStyle.Render("Rating..."))
		} else {
			lines = append(lines, mutedStyle.Render("1 again • 2 hard • 3 good • 4 easy"))
		}
	default:
		lines = append(lines, labelStyle.Render("Vocabulary")+mutedStyle.Render("not in vocabulary"))
		if st.Adding {
			lines = append(lines, loadingStyle.Render("Adding..."))
		} else {
			lines = append(lines, mutedStyle.Render("a: add to vocabulary"))
		}
	}
	if st.VocabularyUnavailable {
		lines = append(lines, errorStyle.Render("vocabulary service unavailable"))
	}

	return popoverStyle.Render(strings.Join(lines, "\n"))
}
