package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/brokkr-dev/plugboard/internal/plugin"
)

func newDestroyCmd(mgr *plugin.PluginManager) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "destroy <type> [<type>...]",
		Short: "Run the @Destroy handlers of loaded plugins and remove them from the active set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grouped, err := mgr.DestroyPlugins(context.Background(), plugin.EmptyDependencyManager(), force, args...)
			printGroupedResults(cmd, grouped)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "remove a plugin from the active set even if one of its destroy handlers failed")

	return cmd
}
