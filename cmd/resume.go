package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/strumapp/strum/internal/playback"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the queue from the previous session",
	Args:  cobra.NoArgs,
	RunE:  runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	saved, err := a.store.GetQueue()
	if err != nil {
		return fmt.Errorf("load saved queue: %w", err)
	}
	if len(saved.Tracks) == 0 {
		return fmt.Errorf("nothing to resume")
	}

	// Saved stream URLs may have expired since the last session; drop
	// them so the engine resolves fresh ones on load.
	tracks := make([]playback.Track, len(saved.Tracks))
	for i, t := range saved.Tracks {
		tracks[i] = playback.Track{
			ID:       t.TrackID,
			Title:    t.Title,
			Artist:   t.Artist,
			Artwork:  t.Artwork,
			Duration: t.Duration,
		}
	}

	sub := a.engine.Subscribe()
	defer a.engine.Unsubscribe(sub)

	if err := a.engine.PlayFromList(ctx, tracks, saved.CurrentIndex, a.settings.Autoplay); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}

	return watchPlayback(ctx, sub)
}
