package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/tolk/internal/library"
	"github.com/rs/zerolog"
)

type textsLoadedMsg struct {
	texts []library.Text
	err   error
}

type textSavedMsg struct {
	text library.Text
	err  error
}

type textDeletedMsg struct {
	id  string
	err error
}

// form fields, in tab order
const (
	fieldTitle = iota
	fieldLanguage
	fieldContent
	fieldCount
)

// LibraryModel lists saved texts and creates new ones.
type LibraryModel struct {
	store    Library
	language string
	log      zerolog.Logger

	texts    []library.Text
	selected int
	offset   int
	loading  bool
	err      error

	// new-text form
	editing  bool
	field    int
	title    textinput.Model
	lang     textinput.Model
	content  textarea.Model
	formErr  error
	saving   bool
	deleting bool

	width  int
	height int
}

// NewLibraryModel creates the library view. language is the default source
// language of new texts.
func NewLibraryModel(store Library, language string, log zerolog.Logger) LibraryModel {
	title := textinput.New()
	title.Placeholder = "Title (optional)"
	title.CharLimit = 120
	title.Width = 40
	title.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ecdc4"))
	title.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffe66d"))

	lang := textinput.New()
	lang.Placeholder = strings.ToUpper(language)
	lang.CharLimit = 8
	lang.Width = 8
	lang.PromptStyle = title.PromptStyle

	content := textarea.New()
	content.Placeholder = "Paste or type the text to read..."
	content.ShowLineNumbers = false
	content.CharLimit = 0

	return LibraryModel{
		store:    store,
		language: language,
		log:      log,
		title:    title,
		lang:     lang,
		content:  content,
		loading:  true,
	}
}

// SetSize updates the view dimensions.
func (m *LibraryModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.content.SetWidth(max(width-6, 20))
	m.content.SetHeight(max(height-14, 4))
}

// Editing reports whether the view is capturing text input.
func (m LibraryModel) Editing() bool { return m.editing }

// Init loads the saved texts.
func (m LibraryModel) Init() tea.Cmd {
	return m.load()
}

// Texts returns the loaded texts.
func (m LibraryModel) Texts() []library.Text { return m.texts }

func (m LibraryModel) load() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		texts, err := store.List()
		return textsLoadedMsg{texts: texts, err: err}
	}
}

// Update handles messages.
func (m LibraryModel) Update(msg tea.Msg) (LibraryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case textsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("listing texts failed")
			return m, nil
		}
		m.texts = msg.texts
		if m.selected >= len(m.texts) {
			m.selected = max(len(m.texts)-1, 0)
		}
		m.adjustScroll()
		return m, nil

	case TextsChangedMsg:
		return m, m.load()

	case textSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.formErr = msg.err
			return m, nil
		}
		m.closeForm()
		m.selected = 0
		m.offset = 0
		m.log.Info().Str("id", msg.text.ID).Str("title", msg.text.Title).Msg("text saved")
		return m, m.load()

	case textDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.log.Error().Err(msg.err).Str("id", msg.id).Msg("deleting text failed")
			return m, nil
		}
		return m, m.load()

	case tea.KeyMsg:
		if m.editing {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}

	if m.editing {
		return m.updateFocused(msg)
	}
	return m, nil
}

func (m LibraryModel) updateList(msg tea.KeyMsg) (LibraryModel, tea.Cmd) {
	if m.deleting {
		m.deleting = false
		if msg.String() == "y" && m.selected < len(m.texts) {
			id := m.texts[m.selected].ID
			store := m.store
			return m, func() tea.Msg {
				return textDeletedMsg{id: id, err: store.Delete(id)}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if m.selected < len(m.texts)-1 {
			m.selected++
			m.adjustScroll()
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
			m.adjustScroll()
		}
	case "g":
		m.selected = 0
		m.offset = 0
	case "G":
		m.selected = max(len(m.texts)-1, 0)
		m.adjustScroll()
	case "enter", "l", "right":
		if m.selected < len(m.texts) {
			text := m.texts[m.selected]
			return m, func() tea.Msg { return OpenTextMsg{Text: text} }
		}
	case "n":
		return m, m.openForm()
	case "d", "x":
		if m.selected < len(m.texts) {
			m.deleting = true
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m *LibraryModel) openForm() tea.Cmd {
	m.editing = true
	m.formErr = nil
	m.title.Reset()
	m.lang.Reset()
	m.content.Reset()
	return m.focus(fieldTitle)
}

func (m *LibraryModel) closeForm() {
	m.editing = false
	m.title.Blur()
	m.lang.Blur()
	m.content.Blur()
}

func (m *LibraryModel) focus(field int) tea.Cmd {
	m.field = field
	m.title.Blur()
	m.lang.Blur()
	m.content.Blur()
	switch field {
	case fieldTitle:
		return m.title.Focus()
	case fieldLanguage:
		return m.lang.Focus()
	default:
		return m.content.Focus()
	}
}

func (m LibraryModel) updateForm(msg tea.KeyMsg) (LibraryModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil
	case "tab":
		return m, m.focus((m.field + 1) % fieldCount)
	case "shift+tab":
		return m, m.focus((m.field + fieldCount - 1) % fieldCount)
	case "ctrl+s":
		return m.save()
	case "enter":
		if m.field != fieldContent {
			return m, m.focus(m.field + 1)
		}
	}
	return m.updateFocused(msg)
}

func (m LibraryModel) updateFocused(msg tea.Msg) (LibraryModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.field {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldLanguage:
		m.lang, cmd = m.lang.Update(msg)
	default:
		m.content, cmd = m.content.Update(msg)
	}
	return m, cmd
}

func (m LibraryModel) save() (LibraryModel, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	if strings.TrimSpace(m.content.Value()) == "" {
		m.formErr = library.ErrEmptyContent
		return m, nil
	}
	lang := strings.TrimSpace(m.lang.Value())
	if lang == "" {
		lang = m.language
	}

	m.saving = true
	store := m.store
	title, content := m.title.Value(), m.content.Value()
	return m, func() tea.Msg {
		text, err := store.Create(title, content, lang)
		return textSavedMsg{text: text, err: err}
	}
}

func (m *LibraryModel) visibleRows() int {
	return max(m.height-8, 3)
}

func (m *LibraryModel) adjustScroll() {
	rows := m.visibleRows()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
}

// View renders the library.
func (m LibraryModel) View() string {
	if m.editing {
		return m.viewForm()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Library"))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d texts", len(m.texts))))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	switch {
	case m.loading:
		b.WriteString(loadingStyle.Render("Loading texts..."))
		b.WriteString("\n")
	case len(m.texts) == 0:
		b.WriteString(mutedStyle.Render("  No saved texts. Press n to add one or use Import."))
		b.WriteString("\n")
	}

	end := min(m.offset+m.visibleRows(), len(m.texts))
	titleWidth := max(m.width-30, 10)
	for i := m.offset; i < end; i++ {
		t := m.texts[i]
		line := fmt.Sprintf("%-*s %-4s %s",
			titleWidth, truncate(t.Title, titleWidth),
			t.SourceLang,
			t.CreatedAt.Local().Format(time.DateOnly))
		if i == m.selected {
			b.WriteString("> " + selectedStyle.Render(line))
		} else {
			b.WriteString("  " + valueStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.deleting && m.selected < len(m.texts) {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Delete %q? y to confirm", m.texts[m.selected].Title)))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter: read • n: new • d: delete • r: reload • j/k: move"))
	return b.String()
}

func (m LibraryModel) viewForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Text"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Title"))
	b.WriteString(m.title.View())
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Language"))
	b.WriteString(m.lang.View())
	b.WriteString("\n\n")
	b.WriteString(m.content.View())
	b.WriteString("\n")

	if m.formErr != nil {
		b.WriteString(errorStyle.Render("Error: " + m.formErr.Error()))
		b.WriteString("\n")
	}
	if m.saving {
		b.WriteString(loadingStyle.Render("Saving..."))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("tab: next field • ctrl+s: save • esc: cancel"))
	return b.String()
}
