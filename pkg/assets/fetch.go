package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const defaultUserAgent = "physview/1.0"

// Fetcher resolves a location to its full content. A fetch either fully
// succeeds or fully fails; there are no partial or streaming loads.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// HTTPFetcher fetches locations over HTTP(S).
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher with a bounded request timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 60 * time.Second}}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, &NetworkError{Location: location, Err: err}
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &NetworkError{Location: location, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{Location: location, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Location: location, Err: err}
	}
	return data, nil
}

// DirFetcher resolves locations relative to a local directory.
type DirFetcher struct {
	Root string
}

// Fetch implements Fetcher.
func (f *DirFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.Root, filepath.FromSlash(location)))
	if err != nil {
		return nil, &NetworkError{Location: location, Err: err}
	}
	return data, nil
}
