package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vmunix/resonarr/internal/download"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show active downloads and queue summary",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("all", false, "Include finished downloads")
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	showAll, _ := cmd.Flags().GetBool("all")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	downloads, err := a.downloads.List(download.Filter{Active: !showAll})
	if err != nil {
		return err
	}

	if len(downloads) == 0 {
		fmt.Println("No active downloads")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRELEASE\tSTATUS\tCLIENT\tADDED")
	for _, d := range downloads {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			d.ID, d.ReleaseName, d.Status, d.Client, d.AddedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
