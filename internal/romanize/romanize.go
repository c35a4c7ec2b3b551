// Package romanize produces reading hints for tokens written in Han script.
package romanize

import (
	"strings"
	"unicode"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// Reader converts Chinese words to pinyin.
type Reader struct {
	args gopinyin.Args
}

// NewReader creates a reader producing tone-marked pinyin (hǎo).
func NewReader() *Reader {
	args := gopinyin.NewArgs()
	args.Style = gopinyin.Tone
	return &Reader{args: args}
}

// Reading returns the pinyin of word, one syllable per Han character. ok is
// false unless language is Chinese and the word contains Han characters.
func (r *Reader) Reading(language, word string) (string, bool) {
	if !isChinese(language) || !hasHan(word) {
		return "", false
	}
	syllables := r.Syllables(word)
	if len(syllables) == 0 {
		return "", false
	}
	return strings.Join(syllables, " "), true
}

// Syllables returns the first reading of every Han character in word.
// Other characters are skipped.
func (r *Reader) Syllables(word string) []string {
	var out []string
	for _, readings := range gopinyin.Pinyin(word, r.args) {
		if len(readings) > 0 {
			out = append(out, readings[0])
		}
	}
	return out
}

var toneMarks = map[rune]struct {
	base rune
	tone int
}{
	'ā': {'a', 1}, 'á': {'a', 2}, 'ǎ': {'a', 3}, 'à': {'a', 4},
	'ē': {'e', 1}, 'é': {'e', 2}, 'ě': {'e', 3}, 'è': {'e', 4},
	'ī': {'i', 1}, 'í': {'i', 2}, 'ǐ': {'i', 3}, 'ì': {'i', 4},
	'ō': {'o', 1}, 'ó': {'o', 2}, 'ǒ': {'o', 3}, 'ò': {'o', 4},
	'ū': {'u', 1}, 'ú': {'u', 2}, 'ǔ': {'u', 3}, 'ù': {'u', 4},
	'ǖ': {'ü', 1}, 'ǘ': {'ü', 2}, 'ǚ': {'ü', 3}, 'ǜ': {'ü', 4},
}

// Numbered rewrites a tone-marked syllable with a trailing tone number
// (hǎo becomes hao3). Syllables without a mark get the neutral tone 5.
func Numbered(syllable string) string {
	tone := 5
	var b strings.Builder
	for _, r := range syllable {
		if mark, ok := toneMarks[r]; ok {
			b.WriteRune(mark.base)
			tone = mark.tone
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte(byte('0' + tone))
	return b.String()
}

func isChinese(language string) bool {
	language = strings.ToLower(strings.TrimSpace(language))
	return language == "zh" || strings.HasPrefix(language, "zh-") || strings.HasPrefix(language, "zh_")
}

func hasHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
