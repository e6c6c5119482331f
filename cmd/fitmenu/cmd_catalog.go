// cmd/fitmenu/cmd_catalog.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fitmenu/internal/catalog"
)

func newCatalogCmd(opts *globalOptions) *cobra.Command {
	var (
		discount float64
		days     []string
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List catalogue products or total the macros of a day's selection",
		Long: `Read every product of the online shop with its price and macros.

Without --day every product is listed. Each --day takes a day name and
the product ids picked for it, e.g. --day Monday:28,39,16,24, and prints
the day's total price and macros.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if discount < 0 || discount >= 100 {
				return fmt.Errorf("discount must be in [0, 100), got %v", discount)
			}

			type selection struct {
				day string
				ids []string
			}
			var selections []selection
			for _, d := range days {
				day, ids, err := catalog.ParseDay(d)
				if err != nil {
					return err
				}
				selections = append(selections, selection{day: day, ids: ids})
			}

			cfg, log, err := opts.load(true)
			if err != nil {
				return err
			}

			client := catalog.NewClient(cfg.Site.CatalogURL, cfg.Site.Timeout, cfg.Site.UserAgent, log)
			products, err := client.FetchAll(cmd.Context(), discount)
			if err != nil {
				return fmt.Errorf("failed to read catalogue: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(selections) == 0 {
				for _, id := range catalog.SortedIDs(products) {
					p := products[id]
					fmt.Fprintf(out, "%s: %s - %.2f Lei: %s\n", id, p.Name, p.Price, p.Macro)
				}
				return nil
			}

			for _, s := range selections {
				summary, err := catalog.SummarizeDay(products, s.day, s.ids)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, summary.String())
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&discount, "discount", 0, "percentage taken off listed prices")
	cmd.Flags().StringArrayVar(&days, "day", nil, "day selection as <day>:<id>,<id>,... (repeatable)")
	return cmd
}
