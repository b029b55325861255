package main

import (
	"github.com/spf13/cobra"

	"github.com/brokkr-dev/plugboard/internal/plugin"
)

type rootFlags struct {
	verbose    bool
	configPath string
}

func newRootCmd(mgr *plugin.PluginManager) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "plugboard",
		Short:         "plugboard drives a plugin.PluginManager from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging (not read: the logger is built before flags are parsed)")
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a plugboard YAML config file (not read: the manager is built from DefaultConfig before flags are parsed)")

	cmd.AddCommand(newLoadCmd(mgr))
	cmd.AddCommand(newDiscoverCmd(mgr))
	cmd.AddCommand(newBootstrapCmd(mgr))
	cmd.AddCommand(newInitCmd(mgr))
	cmd.AddCommand(newFireCmd(mgr))
	cmd.AddCommand(newDestroyCmd(mgr))
	cmd.AddCommand(newListCmd(mgr))
	cmd.AddCommand(newSearchCmd(mgr))
	cmd.AddCommand(newSearchFSCmd())
	cmd.AddCommand(newServeMetricsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
