package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brokkr-dev/plugboard/internal/plugin"
)

func newDiscoverCmd(mgr *plugin.PluginManager) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover [<root>...]",
		Short: "Extend the search roots and load every plugin type PluginSearcher finds under them",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := mgr.LoadPlugins(context.Background(), args...)
			for _, p := range loaded {
				fmt.Fprintf(cmd.OutOrStdout(), "loaded %s\n", p.Name())
			}
			return err
		},
	}
	return cmd
}

func newBootstrapCmd(mgr *plugin.PluginManager) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Load and initialize the internal type set PluginSearcher discovers with no root filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mgr.Initialize(context.Background())
		},
	}
	return cmd
}
