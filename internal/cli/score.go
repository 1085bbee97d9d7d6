package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/pipeline"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/ranking"
)

// scoreReport is the JSON form of `score --json`.
type scoreReport struct {
	Group     string            `json:"group"`
	Score     float64           `json:"score"`
	Rankings  []ranking.Ranking `json:"rankings"`
	Anomalies []ranking.Anomaly `json:"anomalies"`
}

// loadMatrix reads a group file and resolves it with the configured weights.
func (c *CLI) loadMatrix(path string) (*outcome.Group, *outcome.Matrix, error) {
	g, err := outcome.LoadGroup(path)
	if err != nil {
		return nil, nil, err
	}
	if len(g.Competitors) == 0 {
		return nil, nil, errors.New(errors.ErrCodeNoData, "group %s has no competitors", g.Name)
	}
	m, err := g.Matrix(c.Config.Evidence)
	if err != nil {
		return nil, nil, err
	}
	return g, m, nil
}

// scoreCommand creates the score command, which evaluates a given order
// without optimizing.
func (c *CLI) scoreCommand() *cobra.Command {
	var (
		order  string
		asJSON bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "score <group.json>",
		Short: "Score a given order and list the results it contradicts",
		Example: `  wrestlerank score groups/125.json --order ames,boyd,cole
  wrestlerank score groups/125.json --order ames,boyd,cole --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, m, err := c.loadMatrix(args[0])
			if err != nil {
				return err
			}
			o, err := ranking.OrderingFromIDs(m, parseList(order))
			if err != nil {
				return err
			}

			scorer := ranking.NewScorer(m)
			report := scoreReport{
				Group:     g.Name,
				Score:     scorer.Score(o),
				Rankings:  ranking.NewRankings(m, o),
				Anomalies: scorer.Anomalies(o),
			}
			if asJSON {
				return c.writeJSON(report)
			}

			fmt.Fprintln(c.out, StyleTitle.Render(report.Group))
			fmt.Fprintln(c.out, formatStats(m.Len(), m.EdgeCount(), report.Score, false))
			if len(report.Anomalies) == 0 {
				printSuccess("No contradicted results")
				return nil
			}
			fmt.Fprintln(c.out, renderAnomalyTable(report.Rankings, report.Anomalies, limit))
			return nil
		},
	}

	cmd.Flags().StringVar(&order, "order", "", "comma-separated competitor IDs, best first (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the score as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the n heaviest anomalies")
	_ = cmd.MarkFlagRequired("order")

	return cmd
}

// anomaliesCommand creates the anomalies command, which draws the results
// an order contradicts.
func (c *CLI) anomaliesCommand() *cobra.Command {
	var (
		engine engineFlags
		order  string
		format string
		output string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "anomalies <group.json>",
		Short: "Render the contradicted results of a ranking as DOT or SVG",
		Long: `Anomalies draws the competitors in ranked order with an arrow for every
result the order contradicts. Without --order the group is ranked first.`,
		Example: `  wrestlerank anomalies groups/125.json -o 125.svg
  wrestlerank anomalies groups/125.json --format dot --limit 10
  wrestlerank anomalies groups/125.json --order ames,boyd,cole -o 125.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			opts := engine.options(cmd, c)
			opts.Formats = []string{format}
			opts.AnomalyLimit = limit

			runner, err := c.newRunner(ctx, engine.noCache, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			var artifacts map[string][]byte
			if order == "" {
				res, err := c.rankFile(ctx, runner, args[0], opts)
				if err != nil {
					return err
				}
				artifacts = res.Artifacts
			} else {
				_, m, err := c.loadMatrix(args[0])
				if err != nil {
					return err
				}
				o, err := ranking.OrderingFromIDs(m, parseList(order))
				if err != nil {
					return err
				}
				res := &ranking.Result{Ordering: o}
				if artifacts, _, err = runner.RenderWithCacheInfo(ctx, m, res, opts); err != nil {
					return err
				}
			}

			data := artifacts[format]
			if output == "" {
				_, err := c.out.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered %s", format)
			printFile(output)
			return nil
		},
	}

	engine.register(cmd)
	cmd.Flags().StringVar(&order, "order", "", "comma-separated competitor IDs to draw instead of optimizing")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "output format (dot, svg)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "draw only the n heaviest anomalies")

	return cmd
}
