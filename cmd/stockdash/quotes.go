package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/trogers1052/stock-dashboard/internal/models"
	"github.com/trogers1052/stock-dashboard/internal/store"
)

func newQuotesCmd(opts *rootOptions) *cobra.Command {
	var sortBy string

	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Run one refresh and print the resulting stocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.store.RefreshWithTimeout(ctx, opts.cfg.Quotes.RefreshTimeout)
			page := a.store.List(store.ListQuery{Limit: a.store.Len(), SortBy: models.ParseSortOption(sortBy)})

			fmt.Fprintf(cmd.OutOrStdout(), "source: %s  stocks: %d  fallback: %t\n\n", res.Source, res.Count, res.Fallback)
			return printStocks(cmd.OutOrStdout(), page.Stocks)
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", string(models.SortAlphabetical), "alphabetical, price, change, volume or market_cap")
	return cmd
}

func printStocks(out io.Writer, stocks []models.Stock) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "SYMBOL\tPRICE\tCHANGE\tCHANGE %\tVOLUME\tRECOMMENDATION\t")
	for _, s := range stocks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t\n",
			s.Symbol,
			s.Price.StringFixed(2),
			s.Change.StringFixed(2),
			s.ChangePercent.StringFixed(2),
			s.Volume,
			s.Recommendation,
		)
	}
	return w.Flush()
}
