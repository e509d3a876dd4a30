package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vmunix/resonarr/internal/library"
	"github.com/vmunix/resonarr/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [flags] <artist> [album]",
	Short: "Search indexers for an artist or album",
	Long: `Search indexers for an artist or album.

The artist must already be tracked in the library. Results are ordered
best first; rejected releases are listed with their reasons.

Examples:
  resonarr search "Muse"
  resonarr search "Muse" "Absolution"
  resonarr search "Muse" "Absolution" --grab 1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().String("grab", "", "Grab release: number or 'best'")
	searchCmd.Flags().Bool("rejected", false, "Show rejected releases too")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	grabFlag, _ := cmd.Flags().GetString("grab")
	showRejected, _ := cmd.Flags().GetBool("rejected")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	artist, err := requireArtist(a, args[0])
	if err != nil {
		return err
	}

	var album *library.Album
	if len(args) == 2 {
		album, err = findAlbum(a, artist, args[1])
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	var decisions []*search.DownloadDecision
	if album != nil {
		decisions, err = a.maker.AlbumSearch(ctx, artist, album)
	} else {
		decisions, err = a.maker.ArtistSearch(ctx, artist)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	ordered := a.prioritizer.Prioritize(decisions)
	for _, dec := range ordered {
		if dec.Approved() {
			a.cache.Set(dec.Remote)
		}
	}

	printDecisions(ordered, showRejected)

	return grabSelection(cmd, a, ordered, grabFlag)
}

func findAlbum(a *app, artist *library.Artist, title string) (*library.Album, error) {
	albums, err := a.library.ListAlbums(library.AlbumFilter{ArtistID: &artist.ID})
	if err != nil {
		return nil, err
	}
	for _, al := range albums {
		if strings.EqualFold(al.Title, title) {
			return al, nil
		}
	}
	return nil, fmt.Errorf("album %q not found for %s", title, artist.Name)
}

func printDecisions(decisions []*search.DownloadDecision, showRejected bool) {
	approved := 0
	for _, dec := range decisions {
		if dec.Approved() {
			approved++
		}
	}

	if approved == 0 {
		fmt.Println("No acceptable releases found")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tTITLE\tQUALITY\tSIZE\tINDEXER")
		for i, dec := range decisions[:approved] {
			rel := dec.Remote.Release
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				i+1, rel.Title, dec.Remote.Parsed.Quality, formatSize(rel.Size), rel.Indexer)
		}
		_ = w.Flush()
	}

	if showRejected && approved < len(decisions) {
		fmt.Println("\nRejected:")
		for _, dec := range decisions[approved:] {
			fmt.Printf("  %s\n", dec.Remote.Release.Title)
			for _, r := range dec.Rejections {
				fmt.Printf("    - %s\n", r.Reason)
			}
		}
	}
}

func grabSelection(cmd *cobra.Command, a *app, decisions []*search.DownloadDecision, grabFlag string) error {
	if grabFlag == "" {
		return nil
	}

	approved := 0
	for _, dec := range decisions {
		if dec.Approved() {
			approved++
		}
	}
	if approved == 0 {
		return fmt.Errorf("nothing to grab")
	}

	index := 1
	if grabFlag != "best" {
		var err error
		index, err = strconv.Atoi(grabFlag)
		if err != nil || index < 1 || index > approved {
			return fmt.Errorf("invalid grab selection %q", grabFlag)
		}
	}

	dec := decisions[index-1]
	d, err := a.gateway.GrabDecision(cmd.Context(), dec)
	if err != nil {
		return err
	}
	fmt.Printf("Grabbed %s (download %d)\n", dec.Remote.Release.Title, d.ID)
	return nil
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1<<20))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
