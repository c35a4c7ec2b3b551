package views

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/tolk/internal/romanize"
	"github.com/f3rmion/tolk/internal/study"
	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/rs/zerolog"
)

type dueCardsMsg struct {
	cards []tolk.DueCard
	err   error
}

// StudyModel runs a review session over the due cards.
type StudyModel struct {
	backend Backend
	cursor  *study.Cursor
	reader  *romanize.Reader
	log     zerolog.Logger

	loading bool
	loaded  bool
	err     error

	width  int
	height int
}

// NewStudyModel creates the study view. filter is the initial language
// filter, empty for all languages.
func NewStudyModel(backend Backend, filter string, log zerolog.Logger) StudyModel {
	cursor := study.NewCursor(backend, log)
	cursor.SetLanguageFilter(filter)
	return StudyModel{
		backend: backend,
		cursor:  cursor,
		reader:  romanize.NewReader(),
		log:     log,
	}
}

// SetSize updates the view dimensions.
func (m *StudyModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Cursor returns the session cursor.
func (m StudyModel) Cursor() *study.Cursor { return m.cursor }

// Init fetches the due cards.
func (m StudyModel) Init() tea.Cmd {
	return m.fetch()
}

func (m *StudyModel) fetch() tea.Cmd {
	m.loading = true
	m.err = nil
	backend := m.backend
	return func() tea.Msg {
		cards, err := backend.DueCards(context.Background())
		return dueCardsMsg{cards: cards, err: err}
	}
}

// Update handles messages.
func (m StudyModel) Update(msg tea.Msg) (StudyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dueCardsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.log.Error().Err(msg.err).Msg("fetching due cards failed")
			return m, nil
		}
		m.loaded = true
		m.cursor.Load(msg.cards)
		return m, nil

	case study.RatedMsg:
		m.cursor.Apply(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case " ", "space", "enter":
			m.cursor.RevealAnswer()
		case "1", "2", "3", "4":
			if m.cursor.Revealed() {
				return m, m.cursor.Rate(ratingKey(msg.String()))
			}
		case "f":
			m.cursor.SetLanguageFilter(nextFilter(m.cursor.Languages(), m.cursor.LanguageFilter()))
		case "r":
			if !m.loading {
				return m, m.fetch()
			}
		}
	}
	return m, nil
}

// nextFilter cycles "" → languages[0] → ... → "".
func nextFilter(languages []string, current string) string {
	if current == "" {
		if len(languages) == 0 {
			return ""
		}
		return languages[0]
	}
	for i, l := range languages {
		if strings.EqualFold(l, current) {
			if i+1 < len(languages) {
				return languages[i+1]
			}
			return ""
		}
	}
	return ""
}

// View renders the study session.
func (m StudyModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Study"))
	b.WriteString("  ")
	filter := "all languages"
	if f := m.cursor.LanguageFilter(); f != "" {
		filter = strings.ToUpper(f)
	}
	b.WriteString(subtitleStyle.Render(filter))
	if m.loaded {
		cur, total := m.cursor.Position()
		b.WriteString("  ")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d/%d", cur, total)))
	}
	b.WriteString("\n")
	b.WriteString(divider(m.width))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(loadingStyle.Render("Loading due cards..."))
		return b.String()
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("r: retry"))
		return b.String()
	}

	card, ok := m.cursor.Current()
	if !ok {
		_, total := m.cursor.Position()
		if total == 0 {
			b.WriteString(mutedStyle.Render("No cards due."))
		} else {
			b.WriteString(knownStyle.Render("Session complete."))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("f: language filter • r: reload"))
		return b.String()
	}

	front := card.Word
	if reading, ok := m.reader.Reading(card.Language, card.Word); ok {
		front += "\n" + readingStyle.Render(reading)
	}
	b.WriteString(cardStyle.Width(max(min(m.width-8, 50), 20)).Render(front))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Language"))
	b.WriteString(valueStyle.Render(strings.ToUpper(card.Language)))
	b.WriteString("\n")

	if m.cursor.Revealed() {
		answer := card.TranslationText()
		if answer == "" {
			answer = "(no translation)"
		}
		b.WriteString(labelStyle.Render("Answer"))
		b.WriteString(valueStyle.Render(answer))
		b.WriteString("\n")
		if m.cursor.Pending() {
			b.WriteString(loadingStyle.Render("Saving rating..."))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("1: again • 2: hard • 3: good • 4: easy"))
	} else {
		b.WriteString(helpStyle.Render("space: show answer • f: language filter • r: reload"))
	}

	return b.String()
}
