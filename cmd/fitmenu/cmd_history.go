// cmd/fitmenu/cmd_history.go
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fitmenu/internal/storage"
)

const defaultHistoryLimit = 20

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var (
		date      string
		startDate string
		endDate   string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored menus, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(true)
			if err != nil {
				return err
			}

			store, err := storage.NewSQLiteStorage(cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if date != "" {
				menu, err := store.GetMenuByDate(cmd.Context(), date)
				if errors.Is(err, storage.ErrMenuNotFound) {
					fmt.Fprintf(out, "No menu stored for %s\n", date)
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(out, menu.String())
				return nil
			}

			if limit <= 0 {
				limit = defaultHistoryLimit
			}
			menus, err := store.GetMenus(cmd.Context(), startDate, endDate, limit)
			if err != nil {
				return err
			}

			if len(menus) == 0 {
				fmt.Fprintln(out, "No menus stored")
				return nil
			}
			for _, menu := range menus {
				fmt.Fprintln(out, menu.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "show only the latest menu stored for this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&startDate, "start", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "last date to include (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "maximum number of menus")
	return cmd
}
