package cli

import (
	"github.com/spf13/cobra"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/buildinfo"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/config"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent pre-run loads the configuration file and attaches the
// logger to the command context. Callers that add their own pre-run should
// chain to this one.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "wrestlerank orders competitors by minimizing contradicted results",
		Long: `wrestlerank ranks the competitors of a comparison group (for example one
weight class) so that as few recorded results as possible contradict the
order. Head-to-head results count fully; results inferred through common
opponents count at a reduced weight.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "",
		"config file (default "+config.DefaultPath()+")")

	// Register all subcommands
	root.AddCommand(c.rankCommand())
	root.AddCommand(c.scoreCommand())
	root.AddCommand(c.anomaliesCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or the default path when the flag is unset.
// Only an explicitly named file has to exist.
func (c *CLI) loadConfig() error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}
