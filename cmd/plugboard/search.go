package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brokkr-dev/plugboard/internal/plugin"
)

func newSearchCmd(mgr *plugin.PluginManager) *cobra.Command {
	var roots []string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Walk the metadata provider's type graph and list every discoverable plugin type",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			for class := range plugin.Search(ctx, mgr.Provider(), roots...) {
				fmt.Fprintln(cmd.OutOrStdout(), class.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&roots, "root", nil, "restrict the search to types under this classpath root (repeatable; default: unrestricted)")

	return cmd
}
