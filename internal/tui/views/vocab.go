package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/tolk/internal/export"
	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
)

type vocabularyMsg struct {
	entries []tolk.VocabularyEntry
	err     error
}

type exportedMsg struct {
	path string
	err  error
}

// VocabModel lists the whole vocabulary.
type VocabModel struct {
	backend    Backend
	exportPath string
	log        zerolog.Logger

	entries  []tolk.VocabularyEntry
	filtered []tolk.VocabularyEntry
	language string
	search   textinput.Model
	editing  bool

	selected int
	offset   int
	loading  bool
	err      error

	status   string
	statusID int

	width  int
	height int
}

// NewVocabModel creates the vocabulary view. exportPath is where x writes
// the spreadsheet.
func NewVocabModel(backend Backend, exportPath string, log zerolog.Logger) VocabModel {
	search := textinput.New()
	search.Placeholder = "Search words..."
	search.CharLimit = 50
	search.Width = 30
	search.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ecdc4"))

	return VocabModel{
		backend:    backend,
		exportPath: exportPath,
		log:        log,
		search:     search,
	}
}

// SetSize updates the view dimensions.
func (m *VocabModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Editing reports whether the search box has focus.
func (m VocabModel) Editing() bool { return m.editing }

// Init fetches the vocabulary.
func (m VocabModel) Init() tea.Cmd {
	return m.fetch()
}

// Visible returns the entries that pass the language filter and search.
func (m VocabModel) Visible() []tolk.VocabularyEntry { return m.filtered }

func (m *VocabModel) fetch() tea.Cmd {
	m.loading = true
	m.err = nil
	backend := m.backend
	return func() tea.Msg {
		entries, err := backend.Vocabulary(context.Background())
		return vocabularyMsg{entries: entries, err: err}
	}
}

func (m *VocabModel) refilter() {
	query := strings.ToLower(strings.TrimSpace(m.search.Value()))
	m.filtered = nil
	for _, e := range m.entries {
		if m.language != "" && !strings.EqualFold(e.Language, m.language) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Word), query) &&
			!strings.Contains(strings.ToLower(e.TranslationText()), query) {
			continue
		}
		m.filtered = append(m.filtered, e)
	}
	m.selected = 0
	m.offset = 0
}

func (m VocabModel) languages() []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range m.entries {
		l := strings.ToLower(e.Language)
		if l != "" && !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// Update handles messages.
func (m VocabModel) Update(msg tea.Msg) (VocabModel, tea.Cmd) {
	switch msg := msg.(type) {
	case vocabularyMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.log.Error().Err(msg.err).Msg("fetching vocabulary failed")
			return m, nil
		}
		m.entries = msg.entries
		m.refilter()
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("export failed")
			return m.setStatus("Export failed: " + msg.err.Error())
		}
		m.log.Info().Str("path", msg.path).Msg("vocabulary exported")
		return m.setStatus("Exported to " + msg.path)

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			switch msg.String() {
			case "esc", "enter":
				m.editing = false
				m.search.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.refilter()
			return m, cmd
		}

		switch msg.String() {
		case "/":
			m.editing = true
			return m, m.search.Focus()
		case "j", "down":
			if m.selected < len(m.filtered)-1 {
				m.selected++
				m.adjustScroll()
			}
		case "k", "up":
			if m.selected > 0 {
				m.selected--
				m.adjustScroll()
			}
		case "f":
			m.language = nextFilter(m.languages(), m.language)
			m.refilter()
		case "r":
			if !m.loading {
				return m, m.fetch()
			}
		case "x":
			entries, path := append([]tolk.VocabularyEntry(nil), m.filtered...), m.exportPath
			return m, func() tea.Msg {
				return exportedMsg{path: path, err: export.WriteXLSX(path, entries)}
			}
		}
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m VocabModel) setStatus(s string) (VocabModel, tea.Cmd) {
	m.status = s
	m.statusID++
	return m, clearStatusAfter(m.statusID, 3*time.Second)
}

func (m *VocabModel) visibleRows() int {
	return max(m.height-10, 3)
}

func (m *VocabModel) adjustScroll() {
	rows := m.visibleRows()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
}

// View renders the vocabulary table.
func (m VocabModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Vocabulary"))
	b.WriteString("  ")
	lang := "all languages"
	if m.language != "" {
		lang = strings.ToUpper(m.language)
	}
	b.WriteString(subtitleStyle.Render(lang))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d/%d words", len(m.filtered), len(m.entries))))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(divider(m.width))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(loadingStyle.Render("Loading vocabulary..."))
		return b.String()
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("r: retry"))
		return b.String()
	}

	rows := make([][]string, 0, len(m.filtered))
	for _, e := range m.filtered {
		rows = append(rows, export.Row(e))
	}
	widths := columnWidths(export.Columns, rows, max(m.width-4, 40))

	b.WriteString(labelStyle.UnsetWidth().Render("  " + formatRow(export.Columns, widths)))
	b.WriteString("\n")

	end := min(m.offset+m.visibleRows(), len(rows))
	for i := m.offset; i < end; i++ {
		line := formatRow(rows[i], widths)
		if i == m.selected {
			b.WriteString("> " + selectedStyle.Render(line))
		} else {
			b.WriteString("  " + valueStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(copiedStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("/: search • f: language • x: export .xlsx • r: reload"))
	return b.String()
}

// columnWidths sizes each column to its widest cell, shrinking the
// translation column to fit total.
func columnWidths(header []string, rows [][]string, total int) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	sum := len(widths) - 1
	for _, w := range widths {
		sum += w
	}
	const translation = 2
	if over := sum - total; over > 0 {
		widths[translation] = max(widths[translation]-over, 8)
	}
	return widths
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = runewidth.FillRight(truncate(c, widths[i]), widths[i])
	}
	return strings.Join(parts, " ")
}
