package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var grabCmd = &cobra.Command{
	Use:   "grab <indexer-id> <guid>",
	Short: "Grab a previously decided release",
	Long: `Send a cached release to the download client. The release must have
been approved by a recent search or rss run; cached decisions expire
after 30 minutes.`,
	Args: cobra.ExactArgs(2),
	RunE: runGrabCmd,
}

func init() {
	rootCmd.AddCommand(grabCmd)
}

func runGrabCmd(cmd *cobra.Command, args []string) error {
	indexerID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid indexer id %q", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.gateway.Grab(cmd.Context(), indexerID, args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Grabbed %s (download %d)\n", d.ReleaseName, d.ID)
	return nil
}
