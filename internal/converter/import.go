// Package converter moves documents in and out of the store: import from a
// URL, a file or pasted text, and export as JSON, YAML, .http request files,
// PDF or DOCX.
package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/studiowebux/oasedit/internal/format"
	"github.com/studiowebux/oasedit/internal/store"
)

var (
	// ErrNoSource is returned when a Source carries nothing to read
	ErrNoSource = errors.New("nothing to import: provide a URL, a file or text")
	// ErrFetch wraps a failed or non-2xx URL fetch
	ErrFetch = errors.New("failed to fetch document")
	// ErrTooLarge is returned when a remote document exceeds the fetch limit
	ErrTooLarge = errors.New("document too large")
)

// maxFetchSize caps the body read from a remote document
const maxFetchSize = 32 << 20

// Source describes where a document comes from. Text is used on its own
// when URL and Path are empty, and as the fallback when a URL fetch fails.
type Source struct {
	URL  string
	Path string
	Text []byte
}

// SourceFromArg interprets a command line argument: "-" reads stdin,
// http(s) prefixes are URLs, anything else is a file path.
func SourceFromArg(arg string, stdin io.Reader) (Source, error) {
	switch {
	case arg == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return Source{}, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return Source{Text: data}, nil
	case strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://"):
		return Source{URL: arg}, nil
	case arg == "":
		return Source{}, ErrNoSource
	}
	return Source{Path: arg}, nil
}

// Importer reads a Source and loads it into the store
type Importer struct {
	store   *store.Store
	client  *http.Client
	log     zerolog.Logger
	maxSize int64
}

// NewImporter returns an importer using client for URL fetches.
// A nil client means http.DefaultClient.
func NewImporter(s *store.Store, client *http.Client, log zerolog.Logger) *Importer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Importer{store: s, client: client, log: log, maxSize: maxFetchSize}
}

// Import reads src and replaces the stored document. The language is
// detected from content; a filename extension only counts when content
// detection fails. On any error the previous document is kept.
func (i *Importer) Import(ctx context.Context, src Source) (format.Language, error) {
	text, hint, err := i.read(ctx, src)
	if err != nil {
		return format.Unrecognized, err
	}

	lang := format.DetectLanguage(text)
	switch {
	case lang == format.Unrecognized:
		lang = hint
	case hint != format.Unrecognized && hint != lang:
		i.log.Debug().Str("extension", string(hint)).Str("content", string(lang)).Msg("extension disagrees with content, using content")
	}

	return i.store.LoadFromText(text, lang)
}

// read returns the raw text and the language hinted by the source name
func (i *Importer) read(ctx context.Context, src Source) ([]byte, format.Language, error) {
	switch {
	case src.URL != "":
		hint := format.Unrecognized
		if u, err := url.Parse(src.URL); err == nil {
			hint = format.LanguageFromFilename(path.Base(u.Path))
		}
		data, err := i.fetch(ctx, src.URL)
		if err == nil {
			return data, hint, nil
		}
		if len(bytes.TrimSpace(src.Text)) == 0 {
			return nil, hint, err
		}
		i.log.Warn().Err(err).Msg("fetch failed, importing the provided text instead")
		return src.Text, format.Unrecognized, nil

	case src.Path != "":
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, format.Unrecognized, fmt.Errorf("failed to read document file: %w", err)
		}
		return data, format.LanguageFromFilename(src.Path), nil

	case len(bytes.TrimSpace(src.Text)) > 0:
		return src.Text, format.Unrecognized, nil
	}
	return nil, format.Unrecognized, ErrNoSource
}

func (i *Importer) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.8")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, i.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrFetch, err)
	}
	if int64(len(data)) > i.maxSize {
		return nil, fmt.Errorf("%w: %w: %s is larger than %d bytes", ErrFetch, ErrTooLarge, rawURL, i.maxSize)
	}
	i.log.Debug().Str("url", rawURL).Int("bytes", len(data)).Msg("document fetched")
	return data, nil
}
