package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strumapp/strum/internal/playback"
)

var playlistCmd = &cobra.Command{
	Use:   "playlist",
	Short: "Manage playlists",
}

var playlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List playlists",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		playlists, err := a.store.ListPlaylists()
		if err != nil {
			return fmt.Errorf("list playlists: %w", err)
		}
		if len(playlists) == 0 {
			fmt.Println("No playlists.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTRACKS")
		for _, p := range playlists {
			fmt.Fprintf(w, "%s\t%s\t%d\n", p.ID, p.Name, len(p.TrackIDs))
		}
		return w.Flush()
	},
}

var playlistDescription string

var playlistCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		p, err := a.store.CreatePlaylist(args[0], playlistDescription)
		if err != nil {
			return fmt.Errorf("create playlist: %w", err)
		}
		fmt.Printf("Created %q (%s)\n", p.Name, p.ID)
		return nil
	},
}

var playlistRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.RenamePlaylist(args[0], args[1]); err != nil {
			return fmt.Errorf("rename playlist: %w", err)
		}
		fmt.Println("Renamed.")
		return nil
	},
}

var playlistDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.DeletePlaylist(args[0]); err != nil {
			return fmt.Errorf("delete playlist: %w", err)
		}
		fmt.Println("Deleted.")
		return nil
	},
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <playlist-id> <track-id>",
	Short: "Add a track to a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.AddPlaylistTrack(args[0], args[1]); err != nil {
			return fmt.Errorf("add track: %w", err)
		}
		fmt.Println("Added.")
		return nil
	},
}

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove <playlist-id> <track-id>",
	Short: "Remove a track from a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.RemovePlaylistTrack(args[0], args[1]); err != nil {
			return fmt.Errorf("remove track: %w", err)
		}
		fmt.Println("Removed.")
		return nil
	},
}

var playlistPlayCmd = &cobra.Command{
	Use:   "play <id>",
	Short: "Play a playlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistPlay,
}

func init() {
	playlistCreateCmd.Flags().StringVar(&playlistDescription, "description", "", "playlist description")
	playlistCmd.AddCommand(playlistListCmd, playlistCreateCmd, playlistRenameCmd,
		playlistDeleteCmd, playlistAddCmd, playlistRemoveCmd, playlistPlayCmd)
	rootCmd.AddCommand(playlistCmd)
}

func runPlaylistPlay(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := a.store.GetPlaylist(args[0])
	if err != nil {
		return fmt.Errorf("load playlist: %w", err)
	}
	if len(p.TrackIDs) == 0 {
		return fmt.Errorf("playlist %q is empty", p.Name)
	}

	// Fetch current metadata for each track; entries the catalog no
	// longer knows are skipped rather than aborting the whole playlist.
	var tracks []playback.Track
	for _, id := range p.TrackIDs {
		detail, err := a.client.TrackDetail(ctx, id)
		if err != nil {
			a.log.Warn("skipping unresolvable playlist track",
				zap.String("track_id", id),
				zap.Error(err))
			continue
		}
		tracks = append(tracks, queueTrack(*detail))
	}
	if len(tracks) == 0 {
		return fmt.Errorf("no playable tracks in %q", p.Name)
	}

	fmt.Printf("Playing %q (%d tracks)\n", p.Name, len(tracks))

	sub := a.engine.Subscribe()
	defer a.engine.Unsubscribe(sub)

	if err := a.engine.PlayFromList(ctx, tracks, 0, a.settings.Autoplay); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}

	return watchPlayback(ctx, sub)
}
