package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"archie-shopify-sync/internal/domain"
)

var runCmd = &cobra.Command{
	Use:   "run <shop|products|customers|orders|all>",
	Short: "Run a synchronization in the foreground",
	Long: `Runs one entity type synchronization, or all of them in dependency
order, and waits for it to finish. Interrupting the command cancels the run
at the next page boundary.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	runCmd.Flags().String("shop", "", "shop domain, e.g. example.myshopify.com")
	runCmd.Flags().Int("days-back", 0, "orders lookback window in days (orders only)")
	rootCmd.AddCommand(runCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	shop, err := requireShop(cmd)
	if err != nil {
		return err
	}
	daysBack, _ := cmd.Flags().GetInt("days-back")
	if daysBack < 0 {
		return fmt.Errorf("--days-back must be positive")
	}

	var entity domain.EntityType
	if args[0] != "all" {
		entity, err = domain.ParseEntityType(args[0])
		if err != nil {
			return err
		}
		if daysBack > 0 && entity != domain.EntityOrders {
			return fmt.Errorf("--days-back only applies to orders")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, release, err := openSyncer(ctx)
	if err != nil {
		return err
	}
	defer release()

	if entity == "" {
		runs, err := s.SyncAll(ctx, shop)
		for _, run := range runs {
			printRun(cmd, run)
		}
		return err
	}

	run, err := syncEntity(ctx, s, shop, entity, daysBack)
	if run != nil {
		printRun(cmd, run)
	}
	return err
}

func syncEntity(ctx context.Context, s syncer, shop string, entity domain.EntityType, daysBack int) (*domain.SyncRun, error) {
	switch entity {
	case domain.EntityShop:
		return s.SyncShopProfile(ctx, shop)
	case domain.EntityProducts:
		return s.SyncProducts(ctx, shop)
	case domain.EntityCustomers:
		return s.SyncCustomers(ctx, shop)
	case domain.EntityOrders:
		return s.SyncOrders(ctx, shop, daysBack)
	}
	return nil, errors.New("unsupported entity type")
}

func printRun(cmd *cobra.Command, run *domain.SyncRun) {
	line := fmt.Sprintf("%-10s %-12s run=%d processed=%d created=%d updated=%d failed=%d",
		run.EntityType, run.Status, run.ID,
		run.Counters.Processed, run.Counters.Created, run.Counters.Updated, run.Counters.Failed)
	if run.DurationSeconds != nil {
		line += fmt.Sprintf(" duration=%.1fs", *run.DurationSeconds)
	}
	if run.ErrorMessage != "" {
		line += " error=" + fmt.Sprintf("%q", run.ErrorMessage)
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
}
