package venue

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 15 * time.Second

	// maxDocumentBytes bounds the document read from a remote source.
	maxDocumentBytes = 8 << 20
)

// Fetcher loads a venue document from a file path or an http(s) URL. An
// empty source yields the built-in demo venue.
type Fetcher struct {
	client  *http.Client
	source  string
	timeout time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithSource sets the document location.
func WithSource(source string) FetcherOption {
	return func(f *Fetcher) {
		f.source = source
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a new venue document fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.timeout,
		}
	}

	return f
}

// FetchResult contains the result of a fetch operation.
type FetchResult struct {
	Document  *Document
	Source    string
	FetchedAt time.Time
	Duration  time.Duration
	Error     error
}

// Fetch retrieves, parses and validates the venue document.
func (f *Fetcher) Fetch(ctx context.Context) FetchResult {
	start := time.Now()
	result := FetchResult{
		Source:    f.Source(),
		FetchedAt: start,
	}

	if f.source == "" {
		result.Document = Demo()
		result.Duration = time.Since(start)
		return result
	}

	raw, err := f.fetchRaw(ctx)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}

	doc, err := Parse(raw)
	if err != nil {
		result.Error = fmt.Errorf("parse venue document: %w", err)
		return result
	}
	result.Document = doc

	return result
}

// Source returns a display form of the configured source.
func (f *Fetcher) Source() string {
	if f.source == "" {
		return "built-in demo venue"
	}
	return f.source
}

func (f *Fetcher) fetchRaw(ctx context.Context) ([]byte, error) {
	if !isURL(f.source) {
		data, err := os.ReadFile(f.source)
		if err != nil {
			return nil, fmt.Errorf("read venue file: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "ls-seats/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch venue document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
