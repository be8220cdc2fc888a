// Package favorites keeps the local favorites cache in step with the
// remote catalog account. Writes are applied locally first so the UI
// reflects the change immediately; a failed remote write triggers a
// reload of remote ground truth instead of leaving the cache split.
package favorites

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/strumapp/strum/internal/catalog"
	"github.com/strumapp/strum/internal/store"
)

// Remote is the catalog-side favorites API.
type Remote interface {
	ListFavorites(ctx context.Context) ([]catalog.Track, error)
	AddFavorite(ctx context.Context, trackID string) error
	RemoveFavorite(ctx context.Context, trackID string) error
}

// Service coordinates the store cache and the remote favorites API.
type Service struct {
	mu     sync.Mutex
	store  store.Interface
	remote Remote
	log    *zap.Logger
}

// New creates a favorites service. The remote may be nil, in which case
// the service works purely against the local cache.
func New(st store.Interface, remote Remote, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, remote: remote, log: log}
}

// List returns the cached favorites, most recently added first.
func (s *Service) List() ([]store.FavoriteTrack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.GetFavorites()
}

// IsFavorite reports whether the track is in the cache.
func (s *Service) IsFavorite(trackID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isFavoriteLocked(trackID)
}

// Toggle flips the favorite state of the track and returns the new
// state. The local cache is updated before the remote write; if the
// remote write fails, the cache is reconciled against remote ground
// truth and the returned state reflects the reconciled cache.
func (s *Service) Toggle(ctx context.Context, track store.FavoriteTrack) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.isFavoriteLocked(track.TrackID) {
		err = s.removeLocked(ctx, track.TrackID)
	} else {
		err = s.addLocked(ctx, track)
	}
	return s.isFavoriteLocked(track.TrackID), err
}

// Refresh replaces the cache with the remote favorites list.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *Service) addLocked(ctx context.Context, track store.FavoriteTrack) error {
	if track.AddedAt.IsZero() {
		track.AddedAt = time.Now()
	}
	if err := s.store.AddFavorite(track); err != nil {
		return err
	}
	if s.remote == nil {
		return nil
	}
	if err := s.remote.AddFavorite(ctx, track.TrackID); err != nil {
		s.log.Warn("remote favorite add failed, reconciling",
			zap.String("track_id", track.TrackID),
			zap.Error(err))
		return s.reloadLocked(ctx)
	}
	return nil
}

func (s *Service) removeLocked(ctx context.Context, trackID string) error {
	if err := s.store.RemoveFavorite(trackID); err != nil {
		return err
	}
	if s.remote == nil {
		return nil
	}
	if err := s.remote.RemoveFavorite(ctx, trackID); err != nil {
		s.log.Warn("remote favorite remove failed, reconciling",
			zap.String("track_id", trackID),
			zap.Error(err))
		return s.reloadLocked(ctx)
	}
	return nil
}

func (s *Service) reloadLocked(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}
	remote, err := s.remote.ListFavorites(ctx)
	if err != nil {
		return err
	}
	cached := make([]store.FavoriteTrack, len(remote))
	for i, t := range remote {
		cached[i] = store.FavoriteTrack{
			TrackID:  t.ID,
			Title:    t.Title,
			Artist:   t.Artist,
			Artwork:  t.Artwork,
			Duration: t.Duration,
			AddedAt:  time.Now(),
		}
	}
	return s.store.ReplaceFavorites(cached)
}

func (s *Service) isFavoriteLocked(trackID string) bool {
	favorites, err := s.store.GetFavorites()
	if err != nil {
		return false
	}
	for _, f := range favorites {
		if f.TrackID == trackID {
			return true
		}
	}
	return false
}
