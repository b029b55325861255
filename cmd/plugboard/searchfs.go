package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brokkr-dev/plugboard/internal/logger"
	"github.com/brokkr-dev/plugboard/internal/plugin"
)

func newSearchFSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search-fs <manifest-dir>",
		Short: "Search a directory of YAML class manifests for plugin types",
		Long:  "Loads every *.yaml/*.yml manifest under the given directory and lists every discoverable plugin type once, then exits; it does not keep watching the directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(logger.Options{Level: "info", HumanReadable: true})
			if err != nil {
				return err
			}

			provider, err := plugin.NewWatchingMetadataProvider(args[0], log)
			if err != nil {
				return err
			}
			defer provider.Close()

			for class := range plugin.Search(context.Background(), provider) {
				fmt.Fprintln(cmd.OutOrStdout(), class.Name)
			}
			return nil
		},
	}
	return cmd
}
