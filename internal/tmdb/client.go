// Package tmdb implements the metadata source against the TMDB HTTP API.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"indcat/internal/core"
	"indcat/internal/httpclient"
)

// maxBodySize bounds any single TMDB response body.
const maxBodySize = 4 * 1024 * 1024 // 4 MB

// Client talks to the TMDB API. All calls carry the per-request timeout of
// the underlying HTTP client; the caller's credential is passed per call,
// never stored.
type Client struct {
	baseURL string
	region  string
	client  *http.Client
	// now is injectable for deterministic release-date bounds in tests.
	now func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithNow overrides the clock used for the release-date upper bound.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a TMDB client. region is the two-letter country code used for
// the subscription-availability check.
func New(baseURL, region string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		region:  region,
		client:  httpclient.NewDefaultHTTPClient(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discover fetches one page of movies for the given original language,
// sorted by descending release date and bounded to already-released titles.
// A non-2xx response is returned as an error; an empty Results slice signals
// the end of pagination.
func (c *Client) Discover(ctx context.Context, credential, language string, page int) ([]core.RawRecord, error) {
	q := url.Values{}
	q.Set("api_key", credential)
	q.Set("with_original_language", language)
	q.Set("sort_by", "release_date.desc")
	q.Set("release_date.lte", c.now().Format("2006-01-02"))
	q.Set("region", c.region)
	q.Set("page", fmt.Sprintf("%d", page))

	body, err := c.get(ctx, "/discover/movie", q)
	if err != nil {
		return nil, fmt.Errorf("discover page %d: %w", page, err)
	}

	var payload struct {
		Results []core.RawRecord `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing discover page %d: %w", page, err)
	}

	return payload.Results, nil
}

// Enrich performs the per-item secondary lookups: regional subscription
// availability (watch/providers) and the cross-reference identifier
// (external_ids). Absence of either is reported through the Enrichment
// value, not as an error. The external_ids call is skipped for items with
// no subscription offering.
func (c *Client) Enrich(ctx context.Context, credential string, id int64) (core.Enrichment, error) {
	q := url.Values{}
	q.Set("api_key", credential)

	body, err := c.get(ctx, fmt.Sprintf("/movie/%d/watch/providers", id), q)
	if err != nil {
		return core.Enrichment{}, fmt.Errorf("watch providers for %d: %w", id, err)
	}

	// Available when the region lists at least one flatrate offering.
	flatrate := gjson.GetBytes(body, "results."+c.region+".flatrate")
	if !flatrate.Exists() || len(flatrate.Array()) == 0 {
		return core.Enrichment{Available: false}, nil
	}

	body, err = c.get(ctx, fmt.Sprintf("/movie/%d/external_ids", id), q)
	if err != nil {
		return core.Enrichment{}, fmt.Errorf("external ids for %d: %w", id, err)
	}

	return core.Enrichment{
		Available:  true,
		ExternalID: gjson.GetBytes(body, "imdb_id").String(),
	}, nil
}

// get performs one GET against the TMDB API and returns the response body.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	limited := io.LimitReader(resp.Body, maxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("response body too large (exceeds %d bytes)", maxBodySize)
	}

	return body, nil
}
