package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// The storefront serves reduced or blocked content to unrecognized
// clients, so the fetcher presents itself as a desktop browser.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxPageBytes caps how much of a storefront page is read.
const maxPageBytes = 2 << 20 // 2MB

// Fetcher retrieves the raw markup of a storefront product's review
// listing page. One GET per call, no retries, no caching.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher whose requests are bounded by the given
// timeout. A hung upstream is treated the same as any other fetch failure.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// NewFetcherWithClient creates a Fetcher around an existing client.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// ReviewsURL normalizes a storefront product URL to its review listing
// page: query parameters and fragments are stripped, and the path is
// suffixed with /reviews unless it already ends there.
func ReviewsURL(productURL string) (string, error) {
	u, err := url.Parse(productURL)
	if err != nil {
		return "", fmt.Errorf("invalid product URL %q: %w", productURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("product URL %q is not absolute", productURL)
	}

	u.RawQuery = ""
	u.Fragment = ""

	// Trim a trailing slash first to avoid a doubled separator.
	path := strings.TrimSuffix(u.Path, "/")
	if !strings.HasSuffix(path, "/reviews") {
		path += "/reviews"
	}
	u.Path = path

	return u.String(), nil
}

// Fetch retrieves the review-listing markup for the given product URL.
func (f *Fetcher) Fetch(ctx context.Context, productURL string) (string, error) {
	target, err := ReviewsURL(productURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response from %s: %w", target, err)
	}

	return string(body), nil
}
