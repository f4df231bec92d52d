package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest sync state of every entity type",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().String("shop", "", "shop domain")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	shop, err := requireShop(cmd)
	if err != nil {
		return err
	}

	s, release, err := openSyncer(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	summary, err := s.GetStatus(cmd.Context(), shop)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintf(tw, "Shop: %s\n\n", summary.ShopDomain)
	fmt.Fprintln(tw, "ENTITY\tSTATUS\tRECORDS\tLAST SYNC\tERROR")
	for _, e := range summary.Entities {
		last := "-"
		if e.LastSync != nil {
			last = e.LastSync.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", e.EntityType, e.Status, e.RecordsProcessed, last, e.ErrorMessage)
	}
	return nil
}
