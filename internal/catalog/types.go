package catalog

import "time"

// Track is the catalog's view of a track. IDs are opaque strings
// unique within the catalog.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Artwork  string // artwork URL, may be empty
	Duration time.Duration
}

type searchResponse struct {
	Tracks []trackJSON `json:"tracks"`
}

type trackJSON struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	Artwork    string `json:"artwork"`
	DurationMs int64  `json:"durationMs"`
}

type streamResponse struct {
	URL string `json:"url"`
}

func (t trackJSON) toTrack() Track {
	return Track{
		ID:       t.ID,
		Title:    t.Title,
		Artist:   t.Artist,
		Album:    t.Album,
		Artwork:  t.Artwork,
		Duration: time.Duration(t.DurationMs) * time.Millisecond,
	}
}
