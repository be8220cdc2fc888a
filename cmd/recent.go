package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recently played tracks",
	Args:  cobra.NoArgs,
	RunE:  runRecent,
}

var recentClear bool

func init() {
	recentCmd.Flags().BoolVar(&recentClear, "clear", false, "clear the history")
	rootCmd.AddCommand(recentCmd)
}

func runRecent(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if recentClear {
		if err := a.store.ClearRecentlyPlayed(); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	}

	tracks, err := a.store.GetRecentlyPlayed()
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(tracks) == 0 {
		fmt.Println("Nothing played yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYED\tARTIST\tTITLE")
	for _, t := range tracks {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.PlayedAt.Format(time.DateTime), t.Artist, t.Title)
	}
	return w.Flush()
}
