package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var errBodyTooLarge = errors.New("response body exceeds size limit")

// fetcher performs bounded GETs against remote mirrors. It never retries.
type fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
	stats    *FetchStats
}

func newFetcher(opts Options) *fetcher {
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	maxBytes := opts.MaxRemoteBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRemoteBytes
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &fetcher{client: client, timeout: timeout, maxBytes: maxBytes, stats: opts.Stats}
}

func (f *fetcher) get(ctx context.Context, url string) (data []byte, err error) {
	start := time.Now()
	defer func() {
		if f.stats != nil {
			f.stats.Record(time.Since(start), err == nil)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &RemoteFetchError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/pdf, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &RemoteFetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, &RemoteFetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &RemoteFetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, &RemoteFetchError{URL: url, Err: errBodyTooLarge}
	}
	return body, nil
}

func isHTTP(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// PublicHint fetches the explicit public URL attached to the file.
type PublicHint struct {
	fetcher *fetcher
}

func (PublicHint) Name() string { return "public_url" }

func (s PublicHint) Attempt(ctx context.Context, loc Locator) ([]byte, error) {
	if !isHTTP(loc.PublicHint) {
		return nil, ErrNotApplicable
	}
	return s.fetcher.get(ctx, loc.PublicHint)
}

// LocatorURL fetches a storage locator that is itself an http(s) URL.
type LocatorURL struct {
	fetcher *fetcher
}

func (LocatorURL) Name() string { return "storage_url" }

func (s LocatorURL) Attempt(ctx context.Context, loc Locator) ([]byte, error) {
	if !isHTTP(loc.StorageLocator) {
		return nil, ErrNotApplicable
	}
	return s.fetcher.get(ctx, loc.StorageLocator)
}

// objectSchemes are locators that need presigned access we do not have.
var objectSchemes = map[string]bool{
	"s3": true,
	"gs": true,
}

// ObjectStorage rejects object-storage locators without a usable hint.
type ObjectStorage struct{}

func (ObjectStorage) Name() string { return "object_storage" }

func (ObjectStorage) Attempt(_ context.Context, loc Locator) ([]byte, error) {
	sc := scheme(loc.StorageLocator)
	if !objectSchemes[sc] || isHTTP(loc.PublicHint) {
		return nil, ErrNotApplicable
	}
	return nil, &UnsupportedLocatorError{Locator: loc.StorageLocator, Scheme: sc}
}
