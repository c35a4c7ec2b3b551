package views

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/tolk/internal/library"
	"github.com/rs/zerolog"
)

// FileSelectedMsg is sent when a file is selected
type FileSelectedMsg struct {
	Path string
}

type importedMsg struct {
	source string
	text   library.Text
	err    error
}

// File picker styles
var (
	fpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	fpPathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true).
			MarginBottom(1)

	fpDirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ecdc4")).
			Bold(true)

	fpFileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee"))
)

// ImportExtensions are the file types the picker offers.
var ImportExtensions = []string{".txt", ".md", ".html", ".htm"}

// FileEntry represents a file or directory
type FileEntry struct {
	Name  string
	IsDir bool
	Path  string
}

// FilePickerModel picks a file or takes a URL and imports it into the
// library.
type FilePickerModel struct {
	store    Library
	client   *http.Client
	language string
	log      zerolog.Logger

	currentDir string
	entries    []FileEntry
	selected   int
	offset     int // For scrolling

	extensions []string // Filter to these extensions

	url       textinput.Model
	enterURL  bool
	importing string

	err    error
	status string

	width  int
	height int
}

// NewFilePickerModel creates the import view starting in dir, or the home
// directory when dir is empty.
func NewFilePickerModel(store Library, client *http.Client, language, dir string, log zerolog.Logger) FilePickerModel {
	if dir == "" {
		dir, _ = os.UserHomeDir()
	}
	if dir == "" {
		dir = "/"
	}

	url := textinput.New()
	url.Placeholder = "https://..."
	url.CharLimit = 2048
	url.Width = 50
	url.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ecdc4"))

	m := FilePickerModel{
		store:      store,
		client:     client,
		language:   language,
		log:        log,
		currentDir: dir,
		extensions: ImportExtensions,
		url:        url,
	}
	m.loadDir()
	return m
}

// SetSize updates the view dimensions.
func (m *FilePickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Editing reports whether the URL box has focus.
func (m FilePickerModel) Editing() bool { return m.enterURL }

// Entries returns the listed directory entries.
func (m FilePickerModel) Entries() []FileEntry { return m.entries }

// loadDir loads the entries from the current directory
func (m *FilePickerModel) loadDir() {
	m.entries = nil
	m.selected = 0
	m.offset = 0
	m.err = nil

	entries, err := os.ReadDir(m.currentDir)
	if err != nil {
		m.err = err
		return
	}

	if parent := filepath.Dir(m.currentDir); parent != m.currentDir {
		m.entries = append(m.entries, FileEntry{
			Name:  "..",
			IsDir: true,
			Path:  parent,
		})
	}

	var dirs, files []FileEntry
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		fe := FileEntry{
			Name:  entry.Name(),
			IsDir: entry.IsDir(),
			Path:  filepath.Join(m.currentDir, entry.Name()),
		}

		if entry.IsDir() {
			dirs = append(dirs, fe)
		} else if m.matchesExtension(entry.Name()) {
			files = append(files, fe)
		}
	}

	sort.Slice(dirs, func(i, j int) bool {
		return strings.ToLower(dirs[i].Name) < strings.ToLower(dirs[j].Name)
	})
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].Name) < strings.ToLower(files[j].Name)
	})

	// Dirs first, then files
	m.entries = append(m.entries, dirs...)
	m.entries = append(m.entries, files...)
}

func (m *FilePickerModel) matchesExtension(name string) bool {
	if len(m.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range m.extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

func (m *FilePickerModel) importFile(path string) tea.Cmd {
	m.importing = path
	m.err = nil
	store, language := m.store, m.language
	return func() tea.Msg {
		draft, err := library.FromFile(path)
		if err != nil {
			return importedMsg{source: path, err: err}
		}
		text, err := store.Create(draft.Title, draft.Content, language)
		return importedMsg{source: path, text: text, err: err}
	}
}

func (m *FilePickerModel) importURL(rawURL string) tea.Cmd {
	m.importing = rawURL
	m.err = nil
	store, client, language := m.store, m.client, m.language
	return func() tea.Msg {
		draft, err := library.FromURL(context.Background(), client, rawURL)
		if err != nil {
			return importedMsg{source: rawURL, err: err}
		}
		text, err := store.Create(draft.Title, draft.Content, language)
		return importedMsg{source: rawURL, text: text, err: err}
	}
}

// Update handles messages.
func (m FilePickerModel) Update(msg tea.Msg) (FilePickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case FileSelectedMsg:
		return m, m.importFile(msg.Path)

	case importedMsg:
		m.importing = ""
		if msg.err != nil {
			m.err = msg.err
			m.log.Error().Err(msg.err).Str("source", msg.source).Msg("import failed")
			return m, nil
		}
		m.status = "Imported " + msg.text.Title
		m.log.Info().Str("source", msg.source).Str("id", msg.text.ID).Msg("text imported")
		text := msg.text
		return m, tea.Batch(
			func() tea.Msg { return TextsChangedMsg{} },
			func() tea.Msg { return OpenTextMsg{Text: text} },
		)

	case tea.KeyMsg:
		if m.enterURL {
			switch msg.String() {
			case "esc":
				m.enterURL = false
				m.url.Blur()
				return m, nil
			case "enter":
				m.enterURL = false
				m.url.Blur()
				raw := strings.TrimSpace(m.url.Value())
				if raw == "" {
					return m, nil
				}
				return m, m.importURL(raw)
			}
			var cmd tea.Cmd
			m.url, cmd = m.url.Update(msg)
			return m, cmd
		}
		if m.importing != "" {
			return m, nil
		}

		switch msg.String() {
		case "j", "down":
			if m.selected < len(m.entries)-1 {
				m.selected++
				m.adjustScroll()
			}
			return m, nil
		case "k", "up":
			if m.selected > 0 {
				m.selected--
				m.adjustScroll()
			}
			return m, nil
		case "enter", "l", "right":
			if m.selected < len(m.entries) {
				entry := m.entries[m.selected]
				if entry.IsDir {
					m.currentDir = entry.Path
					m.loadDir()
				} else {
					return m, func() tea.Msg {
						return FileSelectedMsg{Path: entry.Path}
					}
				}
			}
			return m, nil
		case "backspace", "h":
			parent := filepath.Dir(m.currentDir)
			if parent != m.currentDir {
				m.currentDir = parent
				m.loadDir()
			}
			return m, nil
		case "~":
			home, _ := os.UserHomeDir()
			if home != "" {
				m.currentDir = home
				m.loadDir()
			}
			return m, nil
		case "u":
			m.enterURL = true
			m.url.Reset()
			return m, m.url.Focus()
		case "g":
			m.selected = 0
			m.offset = 0
			return m, nil
		case "G":
			m.selected = max(len(m.entries)-1, 0)
			m.adjustScroll()
			return m, nil
		case "ctrl+d":
			m.selected = min(m.selected+m.getVisibleHeight()/2, max(len(m.entries)-1, 0))
			m.adjustScroll()
			return m, nil
		case "ctrl+u":
			m.selected = max(m.selected-m.getVisibleHeight()/2, 0)
			m.adjustScroll()
			return m, nil
		}
	}

	if m.enterURL {
		var cmd tea.Cmd
		m.url, cmd = m.url.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *FilePickerModel) getVisibleHeight() int {
	return max(m.height-10, 5)
}

func (m *FilePickerModel) adjustScroll() {
	visibleHeight := m.getVisibleHeight()

	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+visibleHeight {
		m.offset = m.selected - visibleHeight + 1
	}
}

// View renders the file picker.
func (m FilePickerModel) View() string {
	var b strings.Builder

	b.WriteString(fpTitleStyle.Render("Import Text (" + strings.Join(m.extensions, " ") + " or URL)"))
	b.WriteString("\n")
	b.WriteString(fpPathStyle.Render(m.currentDir))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
	}
	if m.importing != "" {
		b.WriteString(loadingStyle.Render("Importing " + m.importing + "..."))
		b.WriteString("\n\n")
	} else if m.status != "" {
		b.WriteString(copiedStyle.Render(m.status))
		b.WriteString("\n\n")
	}
	if m.enterURL {
		b.WriteString(labelStyle.Render("URL"))
		b.WriteString(m.url.View())
		b.WriteString("\n\n")
	}

	b.WriteString(divider(m.width))
	b.WriteString("\n")

	visibleHeight := m.getVisibleHeight()
	start := m.offset
	end := min(start+visibleHeight, len(m.entries))

	if len(m.entries) == 0 {
		b.WriteString(mutedStyle.Render("  (no importable files found)"))
		b.WriteString("\n")
	}

	for i := start; i < end; i++ {
		entry := m.entries[i]

		icon := "[FILE] "
		style := fpFileStyle
		if entry.IsDir {
			icon = "[DIR]  "
			style = fpDirStyle
		}

		prefix := "  "
		if i == m.selected {
			prefix = "> "
			style = selectedStyle
		}

		b.WriteString(prefix)
		b.WriteString(style.Render(icon + entry.Name))
		b.WriteString("\n")
	}

	if len(m.entries) > visibleHeight {
		b.WriteString(mutedStyle.Render(strings.Repeat(" ", 50) + "↕ scroll"))
		b.WriteString("\n")
	}

	b.WriteString(divider(m.width))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: import/enter dir • u: import URL • backspace: parent • ~: home"))

	return b.String()
}
