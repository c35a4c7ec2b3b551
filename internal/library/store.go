// Package library stores the texts a reader has saved for later reading.
package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for ids that are not in the library.
var ErrNotFound = errors.New("text not found")

// ErrEmptyContent is returned when saving a text with no content.
var ErrEmptyContent = errors.New("text content is empty")

// UntitledTitle replaces a blank title.
const UntitledTitle = "Untitled"

// Fixed width so that created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS texts (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	content     TEXT NOT NULL,
	source_lang TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS texts_created_at ON texts (created_at)`

// Text is a saved text.
type Text struct {
	ID         string
	Title      string
	Content    string
	SourceLang string
	CreatedAt  time.Time
}

type textRow struct {
	ID         string `db:"id"`
	Title      string `db:"title"`
	Content    string `db:"content"`
	SourceLang string `db:"source_lang"`
	CreatedAt  string `db:"created_at"`
}

func (r textRow) text() (Text, error) {
	created, err := time.Parse(timeLayout, r.CreatedAt)
	if err != nil {
		return Text{}, fmt.Errorf("parsing created_at of %s: %w", r.ID, err)
	}
	return Text{
		ID:         r.ID,
		Title:      r.Title,
		Content:    r.Content,
		SourceLang: r.SourceLang,
		CreatedAt:  created,
	}, nil
}

// Store is a sqlite-backed text library.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open opens or creates the library database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range strings.Split(schema, ";") {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating library schema: %w", err)
		}
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create saves a new text. The title and content are trimmed, a blank title
// becomes "Untitled" and the language is upper-cased.
func (s *Store) Create(title, content, sourceLang string) (Text, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Text{}, ErrEmptyContent
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = UntitledTitle
	}

	t := Text{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		SourceLang: strings.ToUpper(strings.TrimSpace(sourceLang)),
		CreatedAt:  s.now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO texts (id, title, content, source_lang, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Content, t.SourceLang, t.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Text{}, fmt.Errorf("saving text: %w", err)
	}
	return t, nil
}

// List returns every text, newest first.
func (s *Store) List() ([]Text, error) {
	var rows []textRow
	err := s.db.Select(&rows, `SELECT id, title, content, source_lang, created_at FROM texts ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing texts: %w", err)
	}

	texts := make([]Text, 0, len(rows))
	for _, r := range rows {
		t, err := r.text()
		if err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	return texts, nil
}

// Get returns the text with the given id.
func (s *Store) Get(id string) (Text, error) {
	var r textRow
	err := s.db.Get(&r, `SELECT id, title, content, source_lang, created_at FROM texts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Text{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Text{}, fmt.Errorf("getting text %s: %w", id, err)
	}
	return r.text()
}

// Delete removes the text with the given id.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM texts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting text %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting text %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
