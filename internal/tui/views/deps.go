package views

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/tolk/internal/annotate"
	"github.com/f3rmion/tolk/internal/api"
	"github.com/f3rmion/tolk/internal/library"
	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/mattn/go-runewidth"
)

// Backend is the set of service calls made by the views. *api.Client
// implements it.
type Backend interface {
	annotate.Service
	Translate(ctx context.Context, req api.TranslateRequest) (*tolk.Translation, error)
	DueCards(ctx context.Context) ([]tolk.DueCard, error)
	Vocabulary(ctx context.Context) ([]tolk.VocabularyEntry, error)
}

// Library is the saved-text store. *library.Store implements it.
type Library interface {
	List() ([]library.Text, error)
	Get(id string) (library.Text, error)
	Create(title, content, sourceLang string) (library.Text, error)
	Delete(id string) error
}

// OpenTextMsg asks the reader to open a saved text.
type OpenTextMsg struct {
	Text library.Text
}

// TextsChangedMsg tells the library view to reload its list.
type TextsChangedMsg struct{}

type clearStatusMsg struct {
	id int
}

func clearStatusAfter(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, n)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// ratingKey maps the keys 1-4 to Again through Easy. Other keys give an
// invalid rating.
func ratingKey(key string) tolk.Rating {
	if len(key) != 1 || key[0] < '1' || key[0] > '4' {
		return 0
	}
	return tolk.Rating(key[0] - '0')
}
