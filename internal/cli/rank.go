package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/pipeline"
)

// engineFlags holds the optimizer overrides shared by rank and anomalies.
// Only flags the user actually set replace the configured values.
type engineFlags struct {
	runs           int
	workers        int
	seed           uint64
	maxIterations  int
	temperature    float64
	cooling        float64
	minTemperature float64
	damping        float64
	localSearch    int
	noCache        bool
	refresh        bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&f.runs, "runs", 0, "independent annealing runs (at least 3)")
	fl.IntVar(&f.workers, "workers", 0, "runs executed at once (0 = all)")
	fl.Uint64Var(&f.seed, "seed", 0, "base random seed")
	fl.IntVar(&f.maxIterations, "max-iterations", 0, "annealing moves per run")
	fl.Float64Var(&f.temperature, "temperature", 0, "initial annealing temperature")
	fl.Float64Var(&f.cooling, "cooling", 0, "temperature multiplier per move, in (0,1)")
	fl.Float64Var(&f.minTemperature, "min-temperature", 0, "temperature at which a run stops")
	fl.Float64Var(&f.damping, "damping", 0, "PageRank damping factor, in (0,1)")
	fl.IntVar(&f.localSearch, "local-search", 0, "maximum improving swaps after annealing")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable the ranking cache")
	fl.BoolVar(&f.refresh, "refresh", false, "recompute even when a cached ranking exists")
}

// options builds pipeline options from the loaded config and changed flags.
func (f *engineFlags) options(cmd *cobra.Command, c *CLI) pipeline.Options {
	eng := c.Config.Engine
	changed := cmd.Flags().Changed
	if changed("runs") {
		eng.Runs = f.runs
	}
	if changed("workers") {
		eng.Workers = f.workers
	}
	if changed("seed") {
		eng.Seed = f.seed
	}
	if changed("max-iterations") {
		eng.Anneal.MaxIterations = f.maxIterations
	}
	if changed("temperature") {
		eng.Anneal.InitialTemperature = f.temperature
	}
	if changed("cooling") {
		eng.Anneal.CoolingRate = f.cooling
	}
	if changed("min-temperature") {
		eng.Anneal.MinTemperature = f.minTemperature
	}
	if changed("damping") {
		eng.PageRank.Damping = f.damping
	}
	if changed("local-search") {
		eng.LocalSearchIterations = f.localSearch
	}
	return pipeline.Options{
		Engine:   eng,
		Evidence: c.Config.Evidence,
		Refresh:  f.refresh,
		Logger:   c.Logger,
	}
}

// rankCommand creates the rank command for optimizing groups.
func (c *CLI) rankCommand() *cobra.Command {
	var (
		engine  engineFlags
		save    bool
		asJSON  bool
		output  string
		limit   int
		pick    bool
		details bool
	)

	cmd := &cobra.Command{
		Use:   "rank <group.json|dir>",
		Short: "Rank the competitors of one group, or of every group in a directory",
		Long: `Rank finds the order of a group's competitors that contradicts the
least evidence. Given a directory, every *.json group file in it is ranked
in name order and groups without competitors are skipped.`,
		Example: `  wrestlerank rank groups/125.json
  wrestlerank rank groups/ --save
  wrestlerank rank groups/ --pick
  wrestlerank rank groups/133.json --runs 8 --seed 7 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := engine.options(cmd, c)
			opts.Save = save

			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
			}
			if info.IsDir() && pick {
				if path, err = pickGroup(path); err != nil || path == "" {
					return err
				}
				info, _ = os.Stat(path)
			}

			runner, err := c.newRunner(cmd.Context(), engine.noCache, save)
			if err != nil {
				return err
			}
			defer runner.Close()

			var results []*pipeline.Result
			if info.IsDir() {
				results, err = c.rankDir(cmd.Context(), runner, path, opts)
			} else {
				var res *pipeline.Result
				if res, err = c.rankFile(cmd.Context(), runner, path, opts); res != nil {
					results = append(results, res)
				}
			}
			if err != nil {
				return err
			}

			if asJSON || output != "" {
				return c.writeResults(results, output)
			}
			for _, res := range results {
				c.printResult(res, limit, details)
			}
			return nil
		},
	}

	engine.register(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "store the final rankings")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON results to a file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the top n competitors")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose a group from the directory interactively")
	cmd.Flags().BoolVar(&details, "details", false, "list the contradicted results and per-run scores")

	return cmd
}

func (c *CLI) rankFile(ctx context.Context, runner *pipeline.Runner, path string, opts pipeline.Options) (*pipeline.Result, error) {
	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Ranking "+path+"...")
	spinner.Start()
	res, err := runner.ExecuteFile(ctx, path, opts)
	if err != nil {
		spinner.StopWithError("Could not rank " + path)
		return nil, err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Ranked %d competitors", res.Stats.Competitors))
	return res, nil
}

func (c *CLI) rankDir(ctx context.Context, runner *pipeline.Runner, dir string, opts pipeline.Options) ([]*pipeline.Result, error) {
	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Ranking groups in "+dir+"...")
	spinner.Start()
	results, err := runner.ExecuteDir(ctx, dir, opts)
	if err != nil {
		spinner.StopWithError("Could not rank every group in " + dir)
		return results, err
	}
	spinner.Stop()
	if len(results) == 0 {
		printWarning("No group in %s has competitors to rank", dir)
		return nil, nil
	}
	prog.done(fmt.Sprintf("Ranked %d groups", len(results)))
	return results, nil
}

// writeResults writes results as indented JSON to path, or to the command
// output when path is empty. A single result is written as an object.
func (c *CLI) writeResults(results []*pipeline.Result, path string) error {
	var v any = results
	if len(results) == 1 {
		v = results[0]
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = c.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printSuccess("Wrote %d ranking(s)", len(results))
	printFile(path)
	return nil
}

func (c *CLI) printResult(res *pipeline.Result, limit int, details bool) {
	fmt.Fprintln(c.out, StyleTitle.Render(res.Group))
	fmt.Fprintln(c.out, renderRankingTable(res.Ranking.Rankings, limit))
	fmt.Fprintln(c.out, formatStats(res.Stats.Competitors, res.Stats.Edges, res.Ranking.Score, res.CacheInfo.RankingHit))
	fmt.Fprintln(c.out, "  "+formatStages(res.Ranking.Stages))
	if res.Record != nil {
		fmt.Fprintln(c.out, "  "+StyleDim.Render("saved as "+res.Record.ID))
		printNextStep("Show it again", appName+" show "+res.Group)
	}

	if details {
		if len(res.Anomalies) > 0 {
			fmt.Fprintln(c.out, renderAnomalyTable(res.Ranking.Rankings, res.Anomalies, limit))
		}
		for _, run := range res.Ranking.Runs {
			line := fmt.Sprintf("  run %d (%s): %s → %s", run.Index, run.Seed,
				formatScore(run.InitialScore), formatScore(run.Score))
			if run.Failed() {
				line = fmt.Sprintf("  run %d (%s): %s", run.Index, run.Seed, StyleAnomaly.Render(run.Error))
			}
			fmt.Fprintln(c.out, StyleDim.Render(line))
		}
	}
	fmt.Fprintln(c.out)
}
