package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/strumapp/strum/internal/playback"
)

var (
	playShuffle bool
	playLimit   int
)

var playCmd = &cobra.Command{
	Use:   "play <query>",
	Short: "Search the catalog and play the results",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playShuffle, "shuffle", false, "shuffle the result queue")
	playCmd.Flags().IntVar(&playLimit, "limit", 25, "maximum number of tracks to queue")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	query := strings.Join(args, " ")
	results, err := a.client.SearchTracks(ctx, query, playLimit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no tracks match %q", query)
	}

	tracks := make([]playback.Track, len(results))
	for i, t := range results {
		tracks[i] = queueTrack(t)
	}

	if playShuffle {
		a.engine.SetShuffle(true)
	}

	sub := a.engine.Subscribe()
	defer a.engine.Unsubscribe(sub)

	if err := a.engine.PlayFromList(ctx, tracks, 0, a.settings.Autoplay); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}

	return watchPlayback(ctx, sub)
}

// watchPlayback prints track transitions until the queue drains or the
// process is interrupted.
func watchPlayback(ctx context.Context, sub *playback.Subscription) error {
	for {
		select {
		case ev := <-sub.Events():
			switch ev := ev.(type) {
			case playback.TrackChange:
				if ev.Current != nil {
					fmt.Printf("> %s - %s\n", ev.Current.Artist, ev.Current.Title)
				}
			case playback.ErrorEvent:
				fmt.Fprintf(os.Stderr, "playback error (%s): %v\n", ev.Operation, ev.Err)
			case playback.StateChange:
				// The engine only moves Playing -> Paused on its own
				// when a non-repeating queue drains.
				if ev.Previous == playback.StatePlaying && ev.Current == playback.StatePaused {
					fmt.Println("Queue finished.")
					return nil
				}
			}
		case <-ctx.Done():
			fmt.Println()
			return nil
		}
	}
}
