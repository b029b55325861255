package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brokkr-dev/plugboard/internal/plugin"
)

func newListCmd(mgr *plugin.PluginManager) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List currently active plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range mgr.Plugins() {
				fmt.Fprintln(cmd.OutOrStdout(), p.Name())
			}
			return nil
		},
	}
	return cmd
}
