package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vmunix/resonarr/internal/importer"
	"github.com/vmunix/resonarr/internal/library"
)

var importCmd = &cobra.Command{
	Use:   "import [flags] [download-id]",
	Short: "Import a completed download or a folder",
	Long: `Import a completed download or a folder.

With a download id, imports the tracked download's files into the
library. With --path, imports an arbitrary folder (files are copied,
never moved).

Examples:
  resonarr import 42
  resonarr import --path /downloads/Muse.Absolution --artist "Muse"
  resonarr import --path /music/fixed --artist "Muse" --album "Absolution" --replace`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImportCmd,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("path", "", "Folder to import manually")
	importCmd.Flags().String("artist", "", "Artist for manual import")
	importCmd.Flags().String("album", "", "Album for manual import")
	importCmd.Flags().Bool("replace", false, "Replace existing library files")
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("path")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if path != "" {
		return runManualImport(cmd, a, path)
	}

	if len(args) != 1 {
		return fmt.Errorf("download id or --path required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid download id %q", args[0])
	}

	d, err := a.downloads.Get(id)
	if err != nil {
		return err
	}

	result, err := a.importer.ImportDownload(cmd.Context(), d)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d, rejected %d, failed %d (status: %s)\n",
		len(result.Imported), len(result.Rejected), len(result.Failed), result.Status)
	printRejections(result.Rejected)
	return nil
}

func runManualImport(cmd *cobra.Command, a *app, path string) error {
	artistName, _ := cmd.Flags().GetString("artist")
	albumTitle, _ := cmd.Flags().GetString("album")
	replace, _ := cmd.Flags().GetBool("replace")

	var artist *library.Artist
	var album *library.Album
	var err error

	if artistName != "" {
		artist, err = a.library.FindArtistByName(artistName)
		if err != nil {
			return err
		}
		if artist == nil {
			return fmt.Errorf("artist %q is not tracked", artistName)
		}
	}
	if albumTitle != "" {
		if artist == nil {
			return fmt.Errorf("--album requires --artist")
		}
		album, err = findAlbum(a, artist, albumTitle)
		if err != nil {
			return err
		}
	}

	decisions, err := a.importer.ImportPath(cmd.Context(), path, importer.ManualImportOptions{
		Artist:               artist,
		Album:                album,
		ReplaceExistingFiles: replace,
	})
	if err != nil {
		return err
	}

	imported := 0
	var rejected []*importer.ImportDecision
	for _, dec := range decisions {
		if dec.Approved() {
			imported++
		} else {
			rejected = append(rejected, dec)
		}
	}
	fmt.Printf("Imported %d, rejected %d\n", imported, len(rejected))
	printRejections(rejected)
	return nil
}

func printRejections(rejected []*importer.ImportDecision) {
	for _, dec := range rejected {
		fmt.Printf("  %s\n", dec.Track.Path)
		for _, r := range dec.Rejections {
			fmt.Printf("    - %s\n", r.Reason)
		}
	}
}
