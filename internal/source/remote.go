package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	requestTimeout = 15 * time.Second
	maxBodySize    = 8 << 20 // 8 MB
	userAgent      = "goalfinch/1.0"
)

// Remote fetches a delimited table over HTTP and extracts records from it.
type Remote struct {
	URL     string
	Columns ColumnMapping
	Headers map[string]string
	http    *http.Client
}

// NewRemote creates a remote source for url.
func NewRemote(url string, cols ColumnMapping, headers map[string]string) *Remote {
	return &Remote{
		URL:     url,
		Columns: cols,
		Headers: headers,
		http:    &http.Client{},
	}
}

// WithClient swaps the HTTP client, mainly for tests.
func (r *Remote) WithClient(c *http.Client) *Remote {
	r.http = c
	return r
}

// Fetch downloads the table once and parses it. There are no retries; the
// month argument is ignored because remote tables carry their own dates.
func (r *Remote) Fetch(ctx context.Context, _ time.Time) (Batch, error) {
	body, err := r.get(ctx)
	if err != nil {
		return Batch{}, err
	}

	records, err := ParseTable(bytes.NewReader(body), r.Columns)
	if err != nil {
		return Batch{}, fmt.Errorf("source: parsing %s: %w", r.URL, err)
	}
	return Batch{Records: records}, nil
}

func (r *Remote) get(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("source: creating request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	//nolint:gosec // URL comes from the user's own goal config
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: fetching %s: %w", r.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, resp.StatusCode, r.URL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("source: reading %s: %w", r.URL, err)
	}
	return body, nil
}
