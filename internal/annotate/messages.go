package annotate

import "github.com/f3rmion/tolk/internal/tolk"

// Msg is a response addressed to one controller generation.
type Msg interface {
	Target() (Key, uint64)
}

// DictionaryMsg carries a dictionary lookup result.
type DictionaryMsg struct {
	Key         Key
	Gen         uint64
	Translation string
	Err         error
}

// VocabularyMsg carries a vocabulary lookup result.
type VocabularyMsg struct {
	Key   Key
	Gen   uint64
	Entry *tolk.VocabularyEntry
	Err   error
}

// AddedMsg acknowledges an add-word request.
type AddedMsg struct {
	Key Key
	Gen uint64
	Err error
}

// RatedMsg acknowledges a rating submission.
type RatedMsg struct {
	Key    Key
	Gen    uint64
	Rating tolk.Rating
	Err    error
}

func (m DictionaryMsg) Target() (Key, uint64) { return m.Key, m.Gen }
func (m VocabularyMsg) Target() (Key, uint64) { return m.Key, m.Gen }
func (m AddedMsg) Target() (Key, uint64)      { return m.Key, m.Gen }
func (m RatedMsg) Target() (Key, uint64)      { return m.Key, m.Gen }
