package cmd

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/strumapp/strum/internal/catalog"
	"github.com/strumapp/strum/internal/config"
	"github.com/strumapp/strum/internal/favorites"
	"github.com/strumapp/strum/internal/logger"
	"github.com/strumapp/strum/internal/playback"
	"github.com/strumapp/strum/internal/player"
	"github.com/strumapp/strum/internal/store"
)

// app wires the full stack: config, logging, persistence, the catalog
// client, the audio player and the playback engine.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	store     *store.Manager
	client    *catalog.Client
	player    *player.Player
	engine    *playback.Engine
	favorites *favorites.Service
	settings  store.Settings
	modeSub   *playback.Subscription
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputPath: cfg.Log.OutputPath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.L()

	if !cfg.HasCatalogConfig() {
		return nil, errors.New("no catalog endpoint configured: set catalog.base_url in config.toml or STRUM_CATALOG_URL")
	}

	st, err := store.Open()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	client := catalog.NewClient(cfg.Catalog.BaseURL, cfg.CatalogTimeout())

	settings, err := st.GetSettings()
	if err != nil {
		log.Warn("load settings failed, using defaults", zap.Error(err))
		settings = store.DefaultSettings()
	}

	p := player.New()
	p.SetVolume(settings.Volume)
	p.SetMuted(settings.Muted)

	eng := playback.New(p, client, playback.Options{
		Recorder: playRecorder{st: st},
		Logger:   log,
		Shuffle:  settings.Shuffle,
		Repeat:   playback.ParseRepeatMode(settings.RepeatMode),
	})

	a := &app{
		cfg:       cfg,
		log:       log,
		store:     st,
		client:    client,
		player:    p,
		engine:    eng,
		favorites: favorites.New(st, client, log),
		settings:  settings,
	}

	a.modeSub = eng.Subscribe()
	go a.watchModes()

	return a, nil
}

// watchModes persists shuffle/repeat every time they change, so the
// next launch resumes with the same modes.
func (a *app) watchModes() {
	for {
		select {
		case ev := <-a.modeSub.Events():
			mode, ok := ev.(playback.ModeChange)
			if !ok {
				continue
			}
			if err := a.store.SaveModes(mode.Shuffle, mode.Repeat.String()); err != nil {
				a.log.Warn("save modes failed", zap.Error(err))
			}
		case <-a.modeSub.Done():
			return
		}
	}
}

func (a *app) close() {
	a.saveQueueSnapshot()
	_ = a.engine.Close()
	if err := a.store.SaveVolume(a.player.Volume(), a.player.Muted()); err != nil {
		a.log.Warn("save volume failed", zap.Error(err))
	}
	_ = a.store.Close()
	logger.Sync()
}

// saveQueueSnapshot persists the live queue so `strum resume` can pick
// up where this session stopped.
func (a *app) saveQueueSnapshot() {
	st := a.engine.Status()
	snapshot := store.QueueState{CurrentIndex: st.Index}
	for _, t := range st.Queue {
		snapshot.Tracks = append(snapshot.Tracks, store.QueueTrack{
			TrackID:   t.ID,
			Title:     t.Title,
			Artist:    t.Artist,
			Artwork:   t.Artwork,
			StreamURL: t.StreamURL,
			Duration:  t.Duration,
		})
	}
	if err := a.store.SaveQueue(snapshot); err != nil {
		a.log.Warn("save queue snapshot failed", zap.Error(err))
	}
}

// playRecorder feeds the engine's play notifications into the
// recently-played history.
type playRecorder struct {
	st store.Interface
}

func (r playRecorder) RecordPlay(t playback.Track, playedAt time.Time) error {
	return r.st.RecordPlay(store.PlayedTrack{
		TrackID:  t.ID,
		Title:    t.Title,
		Artist:   t.Artist,
		Artwork:  t.Artwork,
		Duration: t.Duration,
		PlayedAt: playedAt,
	})
}

func queueTrack(t catalog.Track) playback.Track {
	return playback.Track{
		ID:       t.ID,
		Title:    t.Title,
		Artist:   t.Artist,
		Artwork:  t.Artwork,
		Duration: t.Duration,
	}
}
