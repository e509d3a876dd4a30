package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "resonarr",
	Short: "Music release automation",
	Long: `resonarr - music release automation

Searches indexers for wanted albums, weighs releases against your
quality profiles, sends winners to a download client, and imports
finished downloads into the library.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: auto-discover)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("resonarr {{.Version}}\n")
}
