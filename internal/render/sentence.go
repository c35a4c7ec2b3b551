package render

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/tolk/internal/align"
	"github.com/f3rmion/tolk/internal/annotate"
	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/rs/zerolog"
)

// Options are the dependencies shared by every sentence of a document.
type Options struct {
	Language string // default language for tokens without a vocabulary seed
	Palette  align.Palette
	Service  annotate.Service
	Logger   zerolog.Logger
}

// Token is a source token ready for display. Controller is nil for static
// tokens.
type Token struct {
	align.Token
	Key        annotate.Key
	Controller *annotate.Controller
}

// Interactive reports whether the token has a live annotation controller.
func (t Token) Interactive() bool {
	return t.Controller != nil && t.Controller.Mounted()
}

// Known reports whether an interactive token is in the vocabulary.
func (t Token) Known() bool {
	return t.Interactive() && t.Controller.State().IsKnown
}

// Layout is one sentence as it should be drawn.
type Layout struct {
	Source     []Token
	Target     []align.Token
	ShowTarget bool
}

// Sentence renders one translated sentence and owns its token controllers.
type Sentence struct {
	index int
	data  tolk.Sentence
	opts  Options

	colored       bool
	colorMatching bool
	alignment     []align.Pair
	source        []align.Token
	target        []align.Token

	controllers []*annotate.Controller
}

// NewSentence prepares sentence index of a document. Nothing is mounted yet.
func NewSentence(index int, data tolk.Sentence, opts Options) *Sentence {
	s := &Sentence{
		index:     index,
		data:      data,
		opts:      opts,
		alignment: data.Alignment,
	}

	s.controllers = make([]*annotate.Controller, len(data.SourceTokens))
	for i, text := range data.SourceTokens {
		info, _ := data.Info(i)
		key := annotate.Key{Sentence: index, Token: i}
		s.controllers[i] = annotate.New(key, text, info, opts.Language, opts.Service, opts.Logger)
	}
	return s
}

// Index returns the sentence's position in the document.
func (s *Sentence) Index() int { return s.index }

// Data returns the sentence as received from the translation service.
func (s *Sentence) Data() tolk.Sentence { return s.data }

// Len returns the number of source tokens.
func (s *Sentence) Len() int { return len(s.data.SourceTokens) }

// Controller returns the controller of source token i, or nil.
func (s *Sentence) Controller(i int) *annotate.Controller {
	if i < 0 || i >= len(s.controllers) {
		return nil
	}
	return s.controllers[i]
}

// SetAlignment replaces the alignment. Colors are recomputed on the next
// Layout.
func (s *Sentence) SetAlignment(pairs []align.Pair) {
	if slices.Equal(pairs, s.alignment) {
		return
	}
	s.alignment = pairs
	s.colored = false
}

// Mount starts every token controller that is not live yet.
func (s *Sentence) Mount() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(s.controllers))
	for _, c := range s.controllers {
		cmds = append(cmds, c.Mount())
	}
	return tea.Batch(cmds...)
}

// Unmount tears down every token controller.
func (s *Sentence) Unmount() {
	for _, c := range s.controllers {
		c.Unmount()
	}
}

// Apply routes an annotation response to its token's controller.
func (s *Sentence) Apply(msg annotate.Msg) tea.Cmd {
	key, _ := msg.Target()
	c := s.Controller(key.Token)
	if c == nil {
		return nil
	}
	return c.Apply(msg)
}

// Layout returns the sentence for the given toggles. Colors are computed from
// scratch whenever ColorMatching or the alignment changed since the last call.
func (s *Sentence) Layout(t Toggles) Layout {
	if !s.colored || s.colorMatching != t.ColorMatching {
		s.colorize(t.ColorMatching)
	}

	source := make([]Token, len(s.source))
	for i, tok := range s.source {
		source[i] = Token{
			Token: tok,
			Key:   annotate.Key{Sentence: s.index, Token: i},
		}
		if t.ShowWordHints && s.controllers[i].Mounted() {
			source[i].Controller = s.controllers[i]
		}
	}

	l := Layout{Source: source, ShowTarget: t.ShowTranslation}
	if t.ShowTranslation {
		l.Target = slices.Clone(s.target)
	}
	return l
}

func (s *Sentence) colorize(matching bool) {
	if matching {
		s.source, s.target = align.Colorize(s.data.SourceTokens, s.data.TargetTokens, s.alignment, s.opts.Palette)
	} else {
		s.source, s.target = align.Plain(s.data.SourceTokens), align.Plain(s.data.TargetTokens)
	}
	s.colorMatching = matching
	s.colored = true
}
