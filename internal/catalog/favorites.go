package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type favoritesResponse struct {
	Tracks []trackJSON `json:"tracks"`
}

// ListFavorites returns the account's favorite tracks.
func (c *Client) ListFavorites(ctx context.Context) ([]Track, error) {
	reqURL := fmt.Sprintf("%s/me/favorites", c.baseURL)

	var result favoritesResponse
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}

	tracks := make([]Track, len(result.Tracks))
	for i, t := range result.Tracks {
		tracks[i] = t.toTrack()
	}
	return tracks, nil
}

// AddFavorite marks a track as a favorite.
func (c *Client) AddFavorite(ctx context.Context, trackID string) error {
	return c.send(ctx, http.MethodPut, c.favoriteURL(trackID))
}

// RemoveFavorite unmarks a track as a favorite.
func (c *Client) RemoveFavorite(ctx context.Context, trackID string) error {
	return c.send(ctx, http.MethodDelete, c.favoriteURL(trackID))
}

func (c *Client) favoriteURL(trackID string) string {
	return fmt.Sprintf("%s/me/favorites/%s", c.baseURL, url.PathEscape(trackID))
}

func (c *Client) send(ctx context.Context, method, reqURL string) error {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= http.StatusMultipleChoices:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
