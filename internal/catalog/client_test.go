package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, time.Second), srv
}

func TestSearchTracks(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracks/search" {
			t.Errorf("path = %q, want /tracks/search", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "daft punk" {
			t.Errorf("q = %q, want %q", got, "daft punk")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tracks":[
			{"id":"t1","title":"One More Time","artist":"Daft Punk","durationMs":320000},
			{"id":"t2","title":"Aerodynamic","artist":"Daft Punk","durationMs":207000}
		]}`))
	})
	defer srv.Close()

	tracks, err := c.SearchTracks(context.Background(), "daft punk", 10)
	if err != nil {
		t.Fatalf("SearchTracks failed: %v", err)
	}

	if len(tracks) != 2 {
		t.Fatalf("len(tracks) = %d, want 2", len(tracks))
	}
	if tracks[0].ID != "t1" {
		t.Errorf("tracks[0].ID = %q, want t1", tracks[0].ID)
	}
	if tracks[0].Duration != 320*time.Second {
		t.Errorf("tracks[0].Duration = %v, want 5m20s", tracks[0].Duration)
	}
}

func TestTrackDetail(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracks/t1" {
			t.Errorf("path = %q, want /tracks/t1", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"t1","title":"One More Time","artist":"Daft Punk","artwork":"https://img.example.com/t1.jpg"}`))
	})
	defer srv.Close()

	track, err := c.TrackDetail(context.Background(), "t1")
	if err != nil {
		t.Fatalf("TrackDetail failed: %v", err)
	}
	if track.Title != "One More Time" {
		t.Errorf("Title = %q, want One More Time", track.Title)
	}
	if track.Artwork != "https://img.example.com/t1.jpg" {
		t.Errorf("Artwork = %q", track.Artwork)
	}
}

func TestResolveStreamURL(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracks/t1/stream" {
			t.Errorf("path = %q, want /tracks/t1/stream", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://media.example.com/t1.mp3"}`))
	})
	defer srv.Close()

	streamURL, err := c.ResolveStreamURL(context.Background(), "t1")
	if err != nil {
		t.Fatalf("ResolveStreamURL failed: %v", err)
	}
	if streamURL != "https://media.example.com/t1.mp3" {
		t.Errorf("url = %q", streamURL)
	}
}

func TestResolveStreamURL_NotFound(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	_, err := c.ResolveStreamURL(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveStreamURL_EmptyURL(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":""}`))
	})
	defer srv.Close()

	_, err := c.ResolveStreamURL(context.Background(), "t1")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestSearchTracks_ServerError(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	if _, err := c.SearchTracks(context.Background(), "anything", 5); err == nil {
		t.Error("expected error for server failure, got nil")
	}
}
