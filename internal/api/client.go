// Package api is the HTTP client for the translation, dictionary and
// spaced-repetition services.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/f3rmion/tolk/internal/tolk"
)

const defaultTimeout = 30 * time.Second

// ErrNotFound is matched by errors for 404 responses. A vocabulary lookup
// that returns it means the word is not in the vocabulary.
var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx response. Message is the server's "error" field
// when it sent one.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client talks to the backend at a base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A zero timeout uses 30s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the server address the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TranslateRequest is the body of POST /api/translation.
type TranslateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	SplitSentences bool   `json:"splitSentences"`
	MarkWords      bool   `json:"markWords"`
}

// Translate sends text for sentence-split translation with word marks.
func (c *Client) Translate(ctx context.Context, req TranslateRequest) (*tolk.Translation, error) {
	var out tolk.Translation
	if err := c.do(ctx, http.MethodPost, "/api/translation", nil, req, &out); err != nil {
		return nil, fmt.Errorf("translating text: %w", err)
	}
	return &out, nil
}

// LookupDictionary returns the best dictionary translation of word. It
// returns "" when the dictionary has an entry without a translation.
func (c *Client) LookupDictionary(ctx context.Context, word, language string) (string, error) {
	q := url.Values{}
	q.Set("word", word)
	q.Set("language", strings.ToLower(language))

	var out struct {
		Translation string `json:"translation"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/dictionary/lookup", q, nil, &out); err != nil {
		return "", fmt.Errorf("dictionary lookup %q: %w", word, err)
	}
	return out.Translation, nil
}

// LookupVocabulary fetches the vocabulary entry for word. Word and language
// are matched case-insensitively. Returns an error matching ErrNotFound when
// the word is not in the vocabulary.
func (c *Client) LookupVocabulary(ctx context.Context, word, language string) (*tolk.VocabularyEntry, error) {
	q := url.Values{}
	q.Set("word", strings.ToLower(word))
	q.Set("language", strings.ToLower(language))

	var out tolk.VocabularyEntry
	if err := c.do(ctx, http.MethodGet, "/api/fsrs/vocabulary/lookup", q, nil, &out); err != nil {
		return nil, fmt.Errorf("vocabulary lookup %q: %w", word, err)
	}
	return &out, nil
}

// AddWord adds word to the vocabulary.
func (c *Client) AddWord(ctx context.Context, word, language, translation string) error {
	body := struct {
		Word        string `json:"word"`
		Language    string `json:"language"`
		Translation string `json:"translation"`
	}{word, language, translation}

	if err := c.do(ctx, http.MethodPost, "/api/fsrs/vocabulary/add", nil, body, nil); err != nil {
		return fmt.Errorf("adding %q: %w", word, err)
	}
	return nil
}

// UpdateRating submits a review rating. The server recomputes scheduling.
func (c *Client) UpdateRating(ctx context.Context, word, language string, rating tolk.Rating) error {
	if !rating.IsValid() {
		return fmt.Errorf("rating %q: %w", word, tolk.ErrInvalidRating)
	}
	body := struct {
		Word     string      `json:"word"`
		Language string      `json:"language"`
		Response tolk.Rating `json:"response"`
	}{word, language, rating}

	if err := c.do(ctx, http.MethodPost, "/api/fsrs/update", nil, body, nil); err != nil {
		return fmt.Errorf("rating %q: %w", word, err)
	}
	return nil
}

// DueCards lists every word due for review, across languages.
func (c *Client) DueCards(ctx context.Context) ([]tolk.DueCard, error) {
	var out struct {
		Words []tolk.DueCard `json:"words"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/fsrs/review", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("fetching due cards: %w", err)
	}
	return out.Words, nil
}

// Vocabulary lists every vocabulary entry.
func (c *Client) Vocabulary(ctx context.Context) ([]tolk.VocabularyEntry, error) {
	var out struct {
		Words []tolk.VocabularyEntry `json:"words"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/fsrs/vocabulary", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("fetching vocabulary: %w", err)
	}
	return out.Words, nil
}

// do performs one JSON round trip. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Status: resp.StatusCode}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			statusErr.Message = apiErr.Error
		}
		return statusErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshaling response: %w", err)
	}
	return nil
}
