// Package tolk provides the core types shared by the reader, the study session
// and the service client.
package tolk

import (
	"github.com/f3rmion/tolk/internal/align"
)

// VocabularyEntry is a word in the learner's vocabulary together with its
// scheduling fields. The scheduling service owns and computes every field;
// tolk only keeps read copies.
type VocabularyEntry struct {
	Word        string     `json:"word"`
	Language    string     `json:"language"`
	Translation *string    `json:"translation"`
	State       State      `json:"state"`
	Due         *Timestamp `json:"due"`
	Stability   float64    `json:"stability"`
	Difficulty  float64    `json:"difficulty"`
	LastReview  *Timestamp `json:"last_review"`
	Step        int        `json:"step"`
}

// TranslationText returns the stored translation or "" when there is none.
func (e *VocabularyEntry) TranslationText() string {
	if e == nil || e.Translation == nil {
		return ""
	}
	return *e.Translation
}

// DueCard is a vocabulary word the scheduling service reports as ready for
// review.
type DueCard struct {
	Word        string  `json:"word"`
	Language    string  `json:"language"`
	Translation *string `json:"translation"`
}

// TranslationText returns the card's translation or "" when there is none.
func (c DueCard) TranslationText() string {
	if c.Translation == nil {
		return ""
	}
	return *c.Translation
}

// WordInfo is the translation service's vocabulary annotation of one source
// token.
type WordInfo struct {
	OriginalWord      string           `json:"original_word"`
	FoundInVocabulary bool             `json:"found_in_vocabulary"`
	MatchType         string           `json:"match_type"`
	VocabularyEntry   *VocabularyEntry `json:"vocabulary_entry"`
}

// Sentence is one translated sentence with its tokens and word alignment.
// WordInfo is parallel to SourceTokens but may be shorter.
type Sentence struct {
	Original     string       `json:"original"`
	Translated   string       `json:"translated"`
	SourceTokens []string     `json:"src_tokenized"`
	TargetTokens []string     `json:"trg_tokenized"`
	Alignment    []align.Pair `json:"alignment"`
	WordInfo     []WordInfo   `json:"wordInfo"`
}

// Info returns the annotation of source token i, or false when the service
// sent none.
func (s Sentence) Info(i int) (WordInfo, bool) {
	if i < 0 || i >= len(s.WordInfo) {
		return WordInfo{}, false
	}
	return s.WordInfo[i], true
}

// Translation is the full result for one text.
type Translation struct {
	OriginalText   string     `json:"originalText"`
	TranslatedText string     `json:"translatedText"`
	Sentences      []Sentence `json:"sentences,omitempty"`
}
