package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rssCmd = &cobra.Command{
	Use:   "rss",
	Short: "Check indexer feeds for wanted releases",
	Long: `Check the latest releases from all configured indexers and decide
each one against the library. Approved releases are cached for grabbing;
with --grab they are sent to the download client immediately.`,
	Args: cobra.NoArgs,
	RunE: runRSSCmd,
}

func init() {
	rootCmd.AddCommand(rssCmd)
	rssCmd.Flags().Bool("grab", false, "Grab all approved releases")
	rssCmd.Flags().Bool("rejected", false, "Show rejected releases too")
}

func runRSSCmd(cmd *cobra.Command, args []string) error {
	grabAll, _ := cmd.Flags().GetBool("grab")
	showRejected, _ := cmd.Flags().GetBool("rejected")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	releases, err := a.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("feed fetch failed: %w", err)
	}

	decisions := a.maker.GetRssDecision(ctx, releases)
	for _, dec := range decisions {
		if dec.Approved() {
			a.cache.Set(dec.Remote)
		}
	}

	printDecisions(decisions, showRejected)

	if !grabAll {
		return nil
	}
	for _, dec := range decisions {
		if !dec.Approved() {
			continue
		}
		d, err := a.gateway.GrabDecision(ctx, dec)
		if err != nil {
			return err
		}
		fmt.Printf("Grabbed %s (download %d)\n", dec.Remote.Release.Title, d.ID)
	}
	return nil
}
