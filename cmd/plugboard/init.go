package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brokkr-dev/plugboard/internal/plugin"
)

func newInitCmd(mgr *plugin.PluginManager) *cobra.Command {
	var rawDeps []string

	cmd := &cobra.Command{
		Use:   "init <type> [<type>...]",
		Short: "Run the @Init handlers of already-loaded plugins through the fixed-point invoker",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := parseStringDeps(rawDeps)
			if err != nil {
				return err
			}
			scope, err := plugin.NewScopedDependencyManager(deps...)
			if err != nil {
				return err
			}
			grouped, err := mgr.InitializePlugins(context.Background(), scope, args...)
			printGroupedResults(cmd, grouped)
			return err
		},
	}

	cmd.Flags().StringArrayVar(&rawDeps, "dep", nil, "a name=value string dependency added to this batch's scope (repeatable)")

	return cmd
}

func printResults(cmd *cobra.Command, results []plugin.Result) {
	for _, r := range results {
		if r.Success() {
			fmt.Fprintf(cmd.OutOrStdout(), "ok   %s.%s\n", r.PluginName, r.HandlerName)
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "fail %s.%s: %v\n", r.PluginName, r.HandlerName, r.Err)
	}
}

func printGroupedResults(cmd *cobra.Command, grouped map[string][]plugin.Result) {
	for _, results := range grouped {
		printResults(cmd, results)
	}
}
