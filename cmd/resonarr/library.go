package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vmunix/resonarr/internal/library"
)

var artistCmd = &cobra.Command{
	Use:   "artist",
	Short: "Manage tracked artists",
}

var artistAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Start tracking an artist",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtistAdd,
}

var artistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked artists",
	Args:  cobra.NoArgs,
	RunE:  runArtistList,
}

var albumCmd = &cobra.Command{
	Use:   "album",
	Short: "Manage tracked albums",
}

var albumAddCmd = &cobra.Command{
	Use:   "add <artist> <title>",
	Short: "Add a wanted album to a tracked artist",
	Args:  cobra.ExactArgs(2),
	RunE:  runAlbumAdd,
}

var albumListCmd = &cobra.Command{
	Use:   "list <artist>",
	Short: "List albums of a tracked artist",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlbumList,
}

func init() {
	rootCmd.AddCommand(artistCmd)
	artistCmd.AddCommand(artistAddCmd)
	artistCmd.AddCommand(artistListCmd)
	artistAddCmd.Flags().String("profile", "", "Quality profile (default: config default)")
	artistAddCmd.Flags().String("path", "", "Artist folder (default: <library root>/<name>)")

	rootCmd.AddCommand(albumCmd)
	albumCmd.AddCommand(albumAddCmd)
	albumCmd.AddCommand(albumListCmd)
	albumAddCmd.Flags().Int("year", 0, "Release year")
	albumAddCmd.Flags().Int("tracks", 0, "Expected track count")
}

func runArtistAdd(cmd *cobra.Command, args []string) error {
	profile, _ := cmd.Flags().GetString("profile")
	path, _ := cmd.Flags().GetString("path")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	existing, err := a.library.FindArtistByName(args[0])
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("artist %q is already tracked", existing.Name)
	}

	if profile == "" {
		profile = a.cfg.Quality.Default
	}
	if _, ok := a.profiles[profile]; !ok {
		return fmt.Errorf("quality profile %q is not defined", profile)
	}
	if path == "" {
		path = filepath.Join(a.cfg.Library.Root, args[0])
	}

	artist := &library.Artist{
		Name:           args[0],
		Path:           path,
		Status:         library.StatusWanted,
		QualityProfile: profile,
		Monitored:      true,
	}
	if err := a.library.AddArtist(artist); err != nil {
		return err
	}

	fmt.Printf("Tracking %s (artist %d, profile %s)\n", artist.Name, artist.ID, profile)
	return nil
}

func runArtistList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	artists, err := a.library.ListArtists(library.ArtistFilter{})
	if err != nil {
		return err
	}
	if len(artists) == 0 {
		fmt.Println("No tracked artists")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tPROFILE\tMONITORED")
	for _, ar := range artists {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			ar.ID, ar.Name, ar.Status, ar.QualityProfile, yesNo(ar.Monitored))
	}
	return w.Flush()
}

func runAlbumAdd(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")
	tracks, _ := cmd.Flags().GetInt("tracks")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	artist, err := requireArtist(a, args[0])
	if err != nil {
		return err
	}

	if existing, err := findAlbum(a, artist, args[1]); err == nil && existing != nil {
		return fmt.Errorf("album %q is already tracked for %s", existing.Title, artist.Name)
	}

	album := &library.Album{
		ArtistID:   artist.ID,
		Title:      args[1],
		Year:       year,
		TrackCount: tracks,
		Status:     library.StatusWanted,
		Monitored:  true,
	}
	if err := a.library.AddAlbum(album); err != nil {
		return err
	}

	fmt.Printf("Wanted: %s - %s (album %d)\n", artist.Name, album.Title, album.ID)
	return nil
}

func runAlbumList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	artist, err := requireArtist(a, args[0])
	if err != nil {
		return err
	}

	albums, err := a.library.ListAlbums(library.AlbumFilter{ArtistID: &artist.ID})
	if err != nil {
		return err
	}
	if len(albums) == 0 {
		fmt.Printf("No albums tracked for %s\n", artist.Name)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tYEAR\tSTATUS\tMONITORED")
	for _, al := range albums {
		year := "-"
		if al.Year > 0 {
			year = strconv.Itoa(al.Year)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			al.ID, al.Title, year, al.Status, yesNo(al.Monitored))
	}
	return w.Flush()
}

func requireArtist(a *app, name string) (*library.Artist, error) {
	artist, err := a.library.FindArtistByName(name)
	if err != nil {
		return nil, err
	}
	if artist == nil {
		return nil, fmt.Errorf("artist %q is not tracked", name)
	}
	return artist, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
