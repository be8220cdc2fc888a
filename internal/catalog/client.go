// Package catalog provides access to the remote music catalog API:
// track search, track detail, and stream URL resolution.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrNotFound indicates the catalog has no entry for the requested id.
	ErrNotFound = errors.New("catalog: track not found")
	// ErrUnavailable indicates the track exists but cannot be streamed
	// (regional restriction, missing media).
	ErrUnavailable = errors.New("catalog: track not streamable")
)

// Resolver maps a track identifier to a directly playable media URL.
// Implementations must be idempotent: the same id resolves to the same
// or an equivalently playable URL.
type Resolver interface {
	ResolveStreamURL(ctx context.Context, trackID string) (string, error)
}

// Client provides access to the catalog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Verify Client implements Resolver at compile time.
var _ Resolver = (*Client)(nil)

// NewClient creates a new catalog API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchTracks searches the catalog for tracks matching the query.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = 25
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s/tracks/search?%s", c.baseURL, params.Encode())

	var result searchResponse
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}

	tracks := make([]Track, len(result.Tracks))
	for i, t := range result.Tracks {
		tracks[i] = t.toTrack()
	}
	return tracks, nil
}

// TrackDetail fetches metadata for a single track.
func (c *Client) TrackDetail(ctx context.Context, trackID string) (*Track, error) {
	reqURL := fmt.Sprintf("%s/tracks/%s", c.baseURL, url.PathEscape(trackID))

	var result trackJSON
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}

	track := result.toTrack()
	return &track, nil
}

// ResolveStreamURL maps a track id to a playable media URL.
// The URL is not cached or validated beyond decoding the response;
// the player surfaces failures when it attempts to open it.
func (c *Client) ResolveStreamURL(ctx context.Context, trackID string) (string, error) {
	reqURL := fmt.Sprintf("%s/tracks/%s/stream", c.baseURL, url.PathEscape(trackID))

	var result streamResponse
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return "", err
	}

	if result.URL == "" {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, trackID)
	}
	return result.URL, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
