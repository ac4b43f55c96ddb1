package flipbook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Fetcher fetches raw image data for a source locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (io.ReadCloser, error)
}

// FileFetcher reads locators as paths in Fs.
type FileFetcher struct {
	Fs afero.Fs
}

// Fetch opens locator, with any file:// prefix removed.
func (f FileFetcher) Fetch(ctx context.Context, locator string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fs := f.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return fs.Open(strings.TrimPrefix(locator, "file://"))
}

// HTTPFetcher fetches http and https locators.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch issues a GET request for locator. Responses other than 2xx are errors.
func (f HTTPFetcher) Fetch(ctx context.Context, locator string) (io.ReadCloser, error) {
	client := f.Client
	if client == nil {
		client = httpClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", locator, resp.Status)
	}
	return resp.Body, nil
}

var httpClient = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 16
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}

// SchemeFetcher routes http and https locators to HTTP and all others to File.
type SchemeFetcher struct {
	HTTP Fetcher
	File Fetcher
}

// Fetch dispatches on the locator scheme.
func (f SchemeFetcher) Fetch(ctx context.Context, locator string) (io.ReadCloser, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return f.HTTP.Fetch(ctx, locator)
	}
	return f.File.Fetch(ctx, locator)
}

// DefaultFetcher returns a SchemeFetcher over the OS filesystem and the
// shared HTTP client.
func DefaultFetcher() Fetcher {
	return SchemeFetcher{
		HTTP: HTTPFetcher{Client: httpClient},
		File: FileFetcher{Fs: afero.NewOsFs()},
	}
}
