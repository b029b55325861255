package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brokkr-dev/plugboard/internal/plugin"
)

func newLoadCmd(mgr *plugin.PluginManager) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <type> [<type>...]",
		Short: "Load one or more plugin types by their declared registry name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				p, err := mgr.LoadPlugin(context.Background(), name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "loaded %s\n", p.Name())
			}
			return nil
		},
	}
	return cmd
}
