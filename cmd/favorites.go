package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/strumapp/strum/internal/store"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage favorite tracks",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		list, err := a.favorites.List()
		if err != nil {
			return fmt.Errorf("list favorites: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No favorites.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tARTIST\tTITLE")
		for _, t := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.TrackID, t.Artist, t.Title)
		}
		return w.Flush()
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <track-id>",
	Short: "Toggle a track's favorite state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		detail, err := a.client.TrackDetail(ctx, args[0])
		if err != nil {
			return fmt.Errorf("look up track: %w", err)
		}

		fav, err := a.favorites.Toggle(ctx, store.FavoriteTrack{
			TrackID:  detail.ID,
			Title:    detail.Title,
			Artist:   detail.Artist,
			Artwork:  detail.Artwork,
			Duration: detail.Duration,
		})
		if err != nil {
			return fmt.Errorf("toggle favorite: %w", err)
		}
		if fav {
			fmt.Printf("Added %q to favorites.\n", detail.Title)
		} else {
			fmt.Printf("Removed %q from favorites.\n", detail.Title)
		}
		return nil
	},
}

var favoritesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the local favorites cache from the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.favorites.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("sync favorites: %w", err)
		}
		fmt.Println("Favorites synced.")
		return nil
	},
}

func init() {
	favoritesCmd.AddCommand(favoritesListCmd, favoritesToggleCmd, favoritesSyncCmd)
	rootCmd.AddCommand(favoritesCmd)
}
