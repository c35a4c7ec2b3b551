package render

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/tolk/internal/annotate"
	"github.com/f3rmion/tolk/internal/tolk"
)

// Document is a translated text: its sentences, their controllers and the
// current toggles.
type Document struct {
	translation *tolk.Translation
	sentences   []*Sentence
	toggles     Toggles
}

// NewDocument builds an unmounted document with default toggles.
func NewDocument(tr *tolk.Translation, opts Options) *Document {
	d := &Document{
		translation: tr,
		toggles:     DefaultToggles(),
	}
	for i, s := range tr.Sentences {
		d.sentences = append(d.sentences, NewSentence(i, s, opts))
	}
	return d
}

// Sentences returns the document's sentences in order.
func (d *Document) Sentences() []*Sentence { return d.sentences }

// Sentence returns sentence i, or nil.
func (d *Document) Sentence(i int) *Sentence {
	if i < 0 || i >= len(d.sentences) {
		return nil
	}
	return d.sentences[i]
}

// Fallback returns the whole translated text when the service did not split
// the text into sentences.
func (d *Document) Fallback() (string, bool) {
	if len(d.sentences) > 0 {
		return "", false
	}
	return d.translation.TranslatedText, true
}

// Toggles returns the current display switches.
func (d *Document) Toggles() Toggles { return d.toggles }

// Mount starts the token controllers when word hints are on. Static tokens
// have no controllers.
func (d *Document) Mount() tea.Cmd {
	if !d.toggles.ShowWordHints {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(d.sentences))
	for _, s := range d.sentences {
		cmds = append(cmds, s.Mount())
	}
	return tea.Batch(cmds...)
}

// Unmount tears down every controller of the document.
func (d *Document) Unmount() {
	for _, s := range d.sentences {
		s.Unmount()
	}
}

// SetToggles applies new display switches. Turning word hints off tears the
// controllers down; turning them back on mounts fresh ones. The other two
// switches never touch controllers.
func (d *Document) SetToggles(t Toggles) tea.Cmd {
	prev := d.toggles
	d.toggles = t

	switch {
	case prev.ShowWordHints && !t.ShowWordHints:
		d.Unmount()
	case !prev.ShowWordHints && t.ShowWordHints:
		return d.Mount()
	}
	return nil
}

// Apply routes an annotation response to the sentence that owns it.
func (d *Document) Apply(msg annotate.Msg) tea.Cmd {
	key, _ := msg.Target()
	s := d.Sentence(key.Sentence)
	if s == nil {
		return nil
	}
	return s.Apply(msg)
}

// Layout lays out sentence i under the current toggles.
func (d *Document) Layout(i int) Layout {
	s := d.Sentence(i)
	if s == nil {
		return Layout{}
	}
	return s.Layout(d.toggles)
}
