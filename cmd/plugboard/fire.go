package main

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brokkr-dev/plugboard/internal/plugin"
)

func newFireCmd(mgr *plugin.PluginManager) *cobra.Command {
	var rawDeps []string

	cmd := &cobra.Command{
		Use:   "fire <event>",
		Short: "Fire an event across every loaded plugin's matching handlers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := parseStringDeps(rawDeps)
			if err != nil {
				return err
			}
			results, err := mgr.FireEvent(context.Background(), args[0], deps...)
			printResults(cmd, results)
			return err
		},
	}

	cmd.Flags().StringArrayVar(&rawDeps, "dep", nil, "a name=value string dependency added to this fire's scope (repeatable)")

	return cmd
}

func parseStringDeps(raw []string) ([]plugin.Dependency, error) {
	deps := make([]plugin.Dependency, 0, len(raw))
	stringType := reflect.TypeOf("")
	for _, entry := range raw {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --dep %q: expected name=value", entry)
		}
		d, err := plugin.NewDependency(name, stringType, value)
		if err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	return deps, nil
}
