// Package deck reads notes from Anki .apkg packages so their words can be
// added to the vocabulary.
package deck

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/net/html"
	_ "modernc.org/sqlite"
)

// fieldSeparator splits the flds column of a note.
const fieldSeparator = "\x1f"

// ErrNoCollection is returned for zip files without an Anki collection.
var ErrNoCollection = errors.New("no collection in package")

// Model is an Anki note type.
type Model struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"flds"`
}

// Field is a named field of a note type.
type Field struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

// Note is one Anki note with its raw field values.
type Note struct {
	ID      int64  `db:"id"`
	ModelID int64  `db:"mid"`
	Tags    string `db:"tags"`
	Flds    string `db:"flds"`
}

// Values splits the note's fields.
func (n Note) Values() []string {
	return strings.Split(n.Flds, fieldSeparator)
}

// Word is a word and its translation taken from a note.
type Word struct {
	Word        string
	Translation string
}

// Package is the content of an .apkg file, read into memory.
type Package struct {
	Models map[int64]Model
	Notes  []Note
}

// Open reads the models and notes of the package at path.
func Open(path string) (*Package, error) {
	tempDir, err := os.MkdirTemp("", "tolk-apkg-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath, err := extractCollection(path, tempDir)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening collection: %w", err)
	}
	defer db.Close()

	var models string
	if err := db.Get(&models, "SELECT models FROM col LIMIT 1"); err != nil {
		return nil, fmt.Errorf("reading collection: %w", err)
	}
	pkg := &Package{Models: make(map[int64]Model)}
	if err := pkg.parseModels(models); err != nil {
		return nil, err
	}

	if err := db.Select(&pkg.Notes, "SELECT id, mid, tags, flds FROM notes ORDER BY id"); err != nil {
		return nil, fmt.Errorf("reading notes: %w", err)
	}
	return pkg, nil
}

// extractCollection writes the collection database of the zip at path into
// dir and returns its path. The newer collection.anki21 wins over
// collection.anki2.
func extractCollection(path, dir string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening package: %w", err)
	}
	defer r.Close()

	var collection *zip.File
	for _, f := range r.File {
		switch f.Name {
		case "collection.anki21":
			collection = f
		case "collection.anki2":
			if collection == nil {
				collection = f
			}
		}
	}
	if collection == nil {
		return "", ErrNoCollection
	}

	dst := filepath.Join(dir, filepath.Base(collection.Name))
	in, err := collection.Open()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", collection.Name, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("extracting %s: %w", collection.Name, err)
	}
	return dst, out.Close()
}

func (p *Package) parseModels(raw string) error {
	var models map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &models); err != nil {
		return fmt.Errorf("parsing models: %w", err)
	}
	for _, data := range models {
		var m Model
		if err := json.Unmarshal(data, &m); err != nil {
			continue // Skip malformed models
		}
		p.Models[m.ID] = m
	}
	return nil
}

// FieldNames returns the distinct field names of all note types.
func (p *Package) FieldNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, n := range p.Notes {
		for _, f := range p.Models[n.ModelID].Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				names = append(names, f.Name)
			}
		}
	}
	return names
}

// Field returns the plain text of the named field, compared
// case-insensitively. It is empty when the note's type has no such field.
func (p *Package) Field(n Note, name string) string {
	values := n.Values()
	for _, f := range p.Models[n.ModelID].Fields {
		if strings.EqualFold(f.Name, name) && f.Ord < len(values) {
			return plainText(values[f.Ord])
		}
	}
	return ""
}

// Words pairs the word and translation fields of every note. Notes with an
// empty word are skipped and repeated words keep their first translation.
func (p *Package) Words(wordField, translationField string) []Word {
	var out []Word
	seen := make(map[string]bool)
	for _, n := range p.Notes {
		w := p.Field(n, wordField)
		if w == "" || seen[strings.ToLower(w)] {
			continue
		}
		seen[strings.ToLower(w)] = true
		out = append(out, Word{Word: w, Translation: p.Field(n, translationField)})
	}
	return out
}

// plainText drops markup and media references from a field value.
func plainText(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(stripSounds(b.String())), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br", "div", "p", "li":
				b.WriteByte(' ')
			}
		}
	}
}

// stripSounds removes [sound:file.mp3] references.
func stripSounds(s string) string {
	for {
		start := strings.Index(s, "[sound:")
		if start < 0 {
			return s
		}
		end := strings.Index(s[start:], "]")
		if end < 0 {
			return s[:start]
		}
		s = s[:start] + " " + s[start+end+1:]
	}
}
