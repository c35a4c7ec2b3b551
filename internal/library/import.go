package library

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-readability"
)

// MaxImportSize caps the size of an imported page or file.
const MaxImportSize = 10 * 1024 * 1024

// Draft is an imported text that has not been saved yet.
type Draft struct {
	Title   string
	Content string
}

// FromFile reads a text from disk. HTML files go through article extraction;
// anything else is read as plain text titled after the file name.
func FromFile(path string) (Draft, error) {
	data, err := readLimited(path)
	if err != nil {
		return Draft{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		abs, _ := filepath.Abs(path)
		return extract(data, &url.URL{Scheme: "file", Path: abs})
	}

	base := filepath.Base(path)
	return Draft{
		Title:   strings.TrimSuffix(base, filepath.Ext(base)),
		Content: string(data),
	}, nil
}

func readLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > MaxImportSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", path, MaxImportSize)
	}
	return data, nil
}

// FromURL downloads a page and extracts its article text.
func FromURL(ctx context.Context, client *http.Client, rawURL string) (Draft, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Draft{}, fmt.Errorf("invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Draft{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return Draft{}, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Draft{}, fmt.Errorf("fetching %s: status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > MaxImportSize {
		return Draft{}, fmt.Errorf("page is larger than %d bytes", MaxImportSize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxImportSize+1))
	if err != nil {
		return Draft{}, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if len(body) > MaxImportSize {
		return Draft{}, fmt.Errorf("page is larger than %d bytes", MaxImportSize)
	}

	return extract(body, u)
}

func extract(page []byte, u *url.URL) (Draft, error) {
	article, err := readability.FromReader(bytes.NewReader(page), u)
	if err != nil {
		return Draft{}, fmt.Errorf("extracting article: %w", err)
	}
	return Draft{
		Title:   strings.TrimSpace(article.Title),
		Content: strings.TrimSpace(article.TextContent),
	}, nil
}
