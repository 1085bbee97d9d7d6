package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/gatorbacon/wrestledata-simple-sub000/internal/api"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/observability/prom"
)

// serveCommand creates the serve command, which runs the HTTP API until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		engine engineFlags
		addr   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP ranking API",
		Long: `Serve exposes the ranking pipeline over HTTP, with stored rankings,
health checks and Prometheus metrics. Engine flags set the defaults for
requests that leave options unset.`,
		Example: `  wrestlerank serve
  wrestlerank serve --addr :9090 --runs 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			runner, err := c.newRunner(ctx, engine.noCache, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := prom.NewMetrics()
			if err := metrics.Register(reg); err != nil {
				return err
			}
			metrics.Install()

			checks := map[string]api.Pinger{}
			if p, ok := runner.Cache.(api.Pinger); ok {
				checks["cache"] = p
			}
			if p, ok := runner.Store.(api.Pinger); ok {
				checks["store"] = p
			}

			server := c.Config.Server
			if cmd.Flags().Changed("addr") {
				server.Addr = addr
			}
			defaults := engine.options(cmd, c)
			defaults.Logger = nil

			logger.Info("serving", "addr", server.Addr,
				"cache", c.Config.Cache.Backend, "store", c.Config.Store.Backend)
			return api.New(api.Config{
				Runner:   runner,
				Store:    runner.Store,
				Defaults: defaults,
				Server:   server,
				Metrics:  prom.Handler(reg),
				Checks:   checks,
				Logger:   logger,
			}).ListenAndServe(ctx)
		},
	}

	engine.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}
