package tui

import (
	"net/http"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/tolk/internal/config"
	"github.com/f3rmion/tolk/internal/library"
	"github.com/f3rmion/tolk/internal/tui/views"
	"github.com/rs/zerolog"
)

// ViewType represents the current active view
type ViewType int

const (
	ViewLibrary ViewType = iota
	ViewReader
	ViewStudy
	ViewVocabulary
	ViewImport
)

// MenuItem represents a sidebar menu entry
type MenuItem struct {
	Label    string
	View     ViewType
	Shortcut string
}

// ViewSwitchMsg requests a view change
type ViewSwitchMsg struct {
	View ViewType
}

// Options are the dependencies and start-up state of the app.
type Options struct {
	Backend    views.Backend
	Library    views.Library
	Config     *config.Config
	HTTPClient *http.Client
	Logger     zerolog.Logger

	ExportPath string // where the vocabulary view writes .xlsx
	ImportDir  string // start directory of the file picker

	StartView   ViewType
	OpenText    *library.Text // opened in the reader on start
	StudyFilter string
}

// AppModel is the main unified TUI model
type AppModel struct {
	log zerolog.Logger

	// Layout state
	width        int
	height       int
	sidebarWidth int
	ready        bool

	// Navigation
	currentView   ViewType
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool

	// Sub-models (views)
	libraryView views.LibraryModel
	readerView  views.ReaderModel
	studyView   views.StudyModel
	vocabView   views.VocabModel
	importView  views.FilePickerModel

	startCmd tea.Cmd

	// Help overlay
	showHelp bool
}

// NewApp creates a new unified TUI application
func NewApp(opts Options) AppModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	menuItems := []MenuItem{
		{Label: "Library", View: ViewLibrary, Shortcut: "1"},
		{Label: "Reader", View: ViewReader, Shortcut: "2"},
		{Label: "Study", View: ViewStudy, Shortcut: "3"},
		{Label: "Vocabulary", View: ViewVocabulary, Shortcut: "4"},
		{Label: "Import", View: ViewImport, Shortcut: "5"},
	}

	app := AppModel{
		log:          opts.Logger,
		sidebarWidth: 18,
		menuItems:    menuItems,

		libraryView: views.NewLibraryModel(opts.Library, cfg.SourceLanguage, opts.Logger.With().Str("cmp", "library").Logger()),
		readerView: views.NewReaderModel(opts.Backend, views.ReaderOptions{
			DefaultLanguage: cfg.SourceLanguage,
			TargetLanguage:  cfg.TargetLanguage,
			Palette:         cfg.AlignPalette(),
			Logger:          opts.Logger.With().Str("cmp", "reader").Logger(),
		}),
		studyView:  views.NewStudyModel(opts.Backend, opts.StudyFilter, opts.Logger.With().Str("cmp", "study").Logger()),
		vocabView:  views.NewVocabModel(opts.Backend, opts.ExportPath, opts.Logger.With().Str("cmp", "vocab").Logger()),
		importView: views.NewFilePickerModel(opts.Library, client, cfg.SourceLanguage, opts.ImportDir, opts.Logger.With().Str("cmp", "import").Logger()),
	}
	app.switchTo(opts.StartView)

	if opts.OpenText != nil {
		app.startCmd = app.readerView.Open(*opts.OpenText)
		app.switchTo(ViewReader)
	}

	return app
}

// CurrentView returns the active view.
func (m AppModel) CurrentView() ViewType { return m.currentView }

func (m *AppModel) switchTo(v ViewType) {
	m.currentView = v
	m.sidebarActive = false
	for i, item := range m.menuItems {
		if item.View == v {
			m.selectedMenu = i
			break
		}
	}
}

// editing reports whether the active view is capturing text input, in which
// case single-letter global keys go to the view.
func (m AppModel) editing() bool {
	switch m.currentView {
	case ViewLibrary:
		return m.libraryView.Editing()
	case ViewVocabulary:
		return m.vocabView.Editing()
	case ViewImport:
		return m.importView.Editing()
	}
	return false
}

// Init initializes the model
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.libraryView.Init(),
		m.studyView.Init(),
		m.vocabView.Init(),
		m.startCmd,
	)
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.editing() {
			return m.updateCurrent(msg)
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "esc":
			if m.sidebarActive {
				return m, tea.Quit
			}
			m.sidebarActive = true
			return m, nil
		case "tab":
			m.sidebarActive = !m.sidebarActive
			return m, nil
		case "f1", "f2", "f3", "f4", "f5":
			m.switchTo(m.menuItems[msg.String()[1]-'1'].View)
			return m, nil
		}

		if m.sidebarActive {
			switch msg.String() {
			case "j", "down":
				if m.selectedMenu < len(m.menuItems)-1 {
					m.selectedMenu++
				}
			case "k", "up":
				if m.selectedMenu > 0 {
					m.selectedMenu--
				}
			case "enter", "l", "right":
				m.switchTo(m.menuItems[m.selectedMenu].View)
			case "1", "2", "3", "4", "5":
				m.switchTo(m.menuItems[msg.String()[0]-'1'].View)
			}
			return m, nil
		}

		return m.updateCurrent(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentWidth := m.width - m.sidebarWidth - 4
		contentHeight := m.height - 2

		m.libraryView.SetSize(contentWidth, contentHeight)
		m.readerView.SetSize(contentWidth, contentHeight)
		m.studyView.SetSize(contentWidth, contentHeight)
		m.vocabView.SetSize(contentWidth, contentHeight)
		m.importView.SetSize(contentWidth, contentHeight)
		return m, nil

	case ViewSwitchMsg:
		m.switchTo(msg.View)
		return m, nil

	case views.OpenTextMsg:
		m.switchTo(ViewReader)
	}

	// Everything else is a response to some view's request. Views ignore
	// messages that are not theirs, so responses reach their owner whichever
	// view is on screen.
	return m.broadcast(msg)
}

func (m AppModel) updateCurrent(msg tea.Msg) (AppModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewLibrary:
		m.libraryView, cmd = m.libraryView.Update(msg)
	case ViewReader:
		m.readerView, cmd = m.readerView.Update(msg)
	case ViewStudy:
		m.studyView, cmd = m.studyView.Update(msg)
	case ViewVocabulary:
		m.vocabView, cmd = m.vocabView.Update(msg)
	case ViewImport:
		m.importView, cmd = m.importView.Update(msg)
	}
	return m, cmd
}

func (m AppModel) broadcast(msg tea.Msg) (AppModel, tea.Cmd) {
	cmds := make([]tea.Cmd, 5)
	m.libraryView, cmds[0] = m.libraryView.Update(msg)
	m.readerView, cmds[1] = m.readerView.Update(msg)
	m.studyView, cmds[2] = m.studyView.Update(msg)
	m.vocabView, cmds[3] = m.vocabView.Update(msg)
	m.importView, cmds[4] = m.importView.Update(msg)
	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	sidebar := m.renderSidebar()

	var content string
	switch m.currentView {
	case ViewLibrary:
		content = m.libraryView.View()
	case ViewReader:
		content = m.readerView.View()
	case ViewStudy:
		content = m.studyView.View()
	case ViewVocabulary:
		content = m.vocabView.View()
	case ViewImport:
		content = m.importView.View()
	}

	contentWidth := m.width - m.sidebarWidth - 4
	mainContent := ContentStyle.
		Width(contentWidth).
		Height(m.height - 2).
		Render(content)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, mainContent)
}

// renderSidebar renders the sidebar navigation
func (m AppModel) renderSidebar() string {
	var items []string

	items = append(items, SidebarTitleStyle.Render("  tolk  "))
	items = append(items, "")

	for i, item := range m.menuItems {
		label := item.Shortcut + ". " + item.Label

		var style lipgloss.Style
		if i == m.selectedMenu {
			if m.sidebarActive {
				style = SidebarItemActiveStyle
			} else {
				// Current view, sidebar not focused
				style = SidebarItemStyle.Bold(true).Foreground(ColorSecondary)
			}
		} else {
			style = SidebarItemStyle
		}

		items = append(items, style.Render(label))
	}

	usedHeight := len(items) + 4
	for i := 0; i < m.height-usedHeight-2; i++ {
		items = append(items, "")
	}

	items = append(items, SidebarHelpStyle.Render("? Help  q Quit"))

	content := lipgloss.JoinVertical(lipgloss.Left, items...)

	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(m.height - 2).
		Render(content)
}

type helpSection struct {
	title string
	keys  [][2]string
}

var helpSections = []helpSection{
	{"Global Keys", [][2]string{
		{"F1-F5", "Switch views"},
		{"tab", "Toggle sidebar focus"},
		{"?", "Show this help"},
		{"q", "Quit"},
	}},
	{"Library", [][2]string{
		{"enter", "Read text"},
		{"n", "New text"},
		{"d", "Delete text"},
	}},
	{"Reader", [][2]string{
		{"←/→ ↑/↓", "Move between words"},
		{"t w c", "Translation, hints, colors"},
		{"a", "Add word to vocabulary"},
		{"1-4", "Rate known word"},
		{"y", "Copy sentence translation"},
	}},
	{"Study", [][2]string{
		{"space", "Show answer"},
		{"1-4", "Again, hard, good, easy"},
		{"f", "Cycle language filter"},
	}},
	{"Vocabulary", [][2]string{
		{"/", "Search"},
		{"x", "Export .xlsx"},
	}},
}

// renderHelp renders the help overlay
func (m AppModel) renderHelp() string {
	helpText := HelpTitleStyle.Render("tolk - read, look up, review") + "\n\n"

	for _, section := range helpSections {
		helpText += HelpSectionStyle.Render(section.title) + "\n"
		for _, k := range section.keys {
			helpText += HelpKeyStyle.Render(k[0]) + HelpDescStyle.Render(k[1]) + "\n"
		}
	}

	helpText += "\n" + HelpStyle.Italic(true).Render("Press any key to close")

	helpBox := HelpBoxStyle.Render(helpText)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, helpBox)
}
