package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/resonarr/pkg/release"
)

var parseCmd = &cobra.Command{
	Use:   "parse <release-name>",
	Short: "Parse a release name locally",
	Long: `Parse a release name locally, without touching the library.

Examples:
  resonarr parse "Muse - Absolution (2003) [FLAC]"
  resonarr parse "Muse_Absolution-2003-FLAC-GROUP"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParseCmd(_ *cobra.Command, args []string) error {
	title := strings.Join(args, " ")
	info := release.Parse(title)

	fmt.Printf("Artist:   %s\n", orDash(info.ArtistName))
	fmt.Printf("Album:    %s\n", orDash(info.AlbumTitle))
	if info.Year > 0 {
		fmt.Printf("Year:     %d\n", info.Year)
	}
	fmt.Printf("Quality:  %s\n", info.Quality)
	if info.ReleaseGroup != "" {
		fmt.Printf("Group:    %s\n", info.ReleaseGroup)
	}
	if info.Discography {
		fmt.Println("Discography release")
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
