// cmd/fitmenu/cmd_today.go
package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fitmenu/internal/config"
	"fitmenu/internal/daily"
	"fitmenu/internal/metrics"
	"fitmenu/internal/planner"
	"fitmenu/internal/scraper"
	"fitmenu/internal/storage"
)

func newTodayCmd(opts *globalOptions) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Scrape today's menu and top it up to the daily targets",
		Long: `Fetch today's menu from the meal plan page, print every dish with its
calories and proteins, then add supplemental foods until the menu reaches
DAILY_CALORIES.

Use --save to store the resulting menu in the history database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(false)
			if err != nil {
				return err
			}

			var saver daily.MenuSaver
			if save {
				store, err := storage.NewSQLiteStorage(cfg.Storage.DBPath)
				if err != nil {
					return fmt.Errorf("failed to open storage: %w", err)
				}
				defer store.Close()
				saver = store
			}

			svc := newDailyService(cfg, saver, metrics.New(), log)
			result, err := svc.Today(cmd.Context(), save)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), svc.Targets(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "store the menu in the history database")
	return cmd
}

func newDailyService(cfg *config.Config, saver daily.MenuSaver, m *metrics.Metrics, log *zap.Logger) *daily.Service {
	client := scraper.NewClient(cfg.Site, log, m)
	targets := planner.Targets{Calories: cfg.DailyCalories, Proteins: cfg.DailyProteins}
	return daily.NewService(client, saver, targets, planner.FromConfig(cfg.Supplements), log)
}

func printReport(w io.Writer, targets planner.Targets, result *daily.Result) {
	fmt.Fprintf(w, "Total calories for today %d kcals\n", targets.Calories)
	fmt.Fprintf(w, "Total proteins for today %dg\n", targets.Proteins)
	fmt.Fprintln(w, result.Menu.String())
	for _, line := range result.Plan.Summary() {
		fmt.Fprintln(w, line)
	}
}
