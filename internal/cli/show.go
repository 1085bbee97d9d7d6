package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/store"
)

// showCommand creates the show command for reading stored rankings.
func (c *CLI) showCommand() *cobra.Command {
	var (
		history int
		limit   int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "show <group>",
		Short: "Print the latest stored ranking of a group",
		Example: `  wrestlerank show 125
  wrestlerank show 125 --history 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if history > 0 {
				recs, err := st.List(ctx, args[0], history)
				if err != nil {
					return err
				}
				if asJSON {
					return c.writeJSON(recs)
				}
				if len(recs) == 0 {
					printInfo("No stored rankings for %s", args[0])
					return nil
				}
				for _, rec := range recs {
					fmt.Fprintf(c.out, "%s  %s  %s\n",
						StyleValue.Render(rec.ID),
						StyleDim.Render(fmt.Sprintf("%-12s %d competitors", formatRelativeTime(rec.CreatedAt), rec.Competitors)),
						StyleNumber.Render(formatScore(rec.Score)))
				}
				return nil
			}

			rec, err := st.Latest(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return c.writeJSON(rec)
			}
			c.printRecord(rec, limit)
			return nil
		},
	}

	cmd.Flags().IntVar(&history, "history", 0, "list the n newest rankings instead")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the top n competitors")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

func (c *CLI) printRecord(rec *store.Record, limit int) {
	fmt.Fprintln(c.out, StyleTitle.Render(rec.Group)+" "+
		StyleDim.Render("ranked "+formatRelativeTime(rec.CreatedAt)+" · "+rec.ID))
	fmt.Fprintln(c.out, renderRankingTable(rec.Rankings, limit))
	fmt.Fprintln(c.out, "  "+StyleDim.Render(fmt.Sprintf("%d competitors · score ", rec.Competitors))+
		StyleNumber.Render(formatScore(rec.Score)))
	if len(rec.Stages) > 0 {
		fmt.Fprintln(c.out, "  "+formatStages(rec.Stages))
	}
}

func (c *CLI) writeJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
