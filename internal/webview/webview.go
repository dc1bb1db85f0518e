// Package webview fetches web pages and flattens them to plain text for the
// desktop's browser app. Pages are cached in memory.
package webview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"charm.land/log/v2"
	"github.com/dgraph-io/ristretto"
)

// maxBody caps how much of a response is read.
const maxBody = 2 << 20

// ErrUnsupported is returned for URLs or content the view cannot show.
var ErrUnsupported = errors.New("unsupported")

// Page is a rendered document.
type Page struct {
	URL   string
	Title string
	Text  string
	Links []string
}

// Fetcher retrieves and renders pages.
type Fetcher struct {
	client *http.Client
	cache  *ristretto.Cache
	ttl    time.Duration
	logger *log.Logger
}

// NewFetcher returns a fetcher using client. A nil client gets a default
// with timeout; a nil logger discards output.
func NewFetcher(client *http.Client, timeout time.Duration, logger *log.Logger) (*Fetcher, error) {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     32 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("page cache: %w", err)
	}

	return &Fetcher{
		client: client,
		cache:  cache,
		ttl:    5 * time.Minute,
		logger: logger.With("component", "webview"),
	}, nil
}

// Close releases the cache.
func (f *Fetcher) Close() { f.cache.Close() }

// Normalize adds https:// to bare hosts and rejects anything that is not
// http or https.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty address", ErrUnsupported)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse address: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupported, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrUnsupported)
	}
	return u.String(), nil
}

// Fetch loads rawURL, serving from cache when possible.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	target, err := Normalize(rawURL)
	if err != nil {
		return Page{}, err
	}

	if v, ok := f.cache.Get(target); ok {
		if p, ok := v.(Page); ok {
			f.logger.Debug("cache hit", "url", target)
			return p, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "termdesk-webview/1.0")
	req.Header.Set("Accept", "text/html, text/plain;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Page{}, fmt.Errorf("fetch %s: %s", target, resp.Status)
	}

	body := io.LimitReader(resp.Body, maxBody)
	page := Page{URL: target}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case mediaType == "" || mediaType == "text/html" || mediaType == "application/xhtml+xml":
		doc, err := Render(body)
		if err != nil {
			return Page{}, fmt.Errorf("render %s: %w", target, err)
		}
		page.Title, page.Text, page.Links = doc.Title, doc.Text, doc.Links
	case strings.HasPrefix(mediaType, "text/"):
		data, err := io.ReadAll(body)
		if err != nil {
			return Page{}, fmt.Errorf("read %s: %w", target, err)
		}
		page.Text = string(data)
	default:
		return Page{}, fmt.Errorf("%w: content type %s", ErrUnsupported, mediaType)
	}

	if page.Title == "" {
		page.Title = target
	}
	f.cache.SetWithTTL(target, page, int64(len(page.Text)+1), f.ttl)
	f.logger.Info("page loaded", "url", target, "bytes", len(page.Text))
	return page, nil
}
