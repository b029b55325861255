package main

import (
	"context"
	"fmt"
	"os"

	"github.com/brokkr-dev/plugboard/internal/demoplugins"
	"github.com/brokkr-dev/plugboard/internal/logger"
	"github.com/brokkr-dev/plugboard/internal/plugin"
	"github.com/brokkr-dev/plugboard/internal/tracing"
)

func main() {
	cfg := plugin.DefaultConfig()

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, HumanReadable: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	shutdownTracing, err := tracing.Init(version)
	if err != nil {
		log.Error(err, "failed to initialize tracing, continuing without spans")
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Error(err, "tracer shutdown failed")
			}
		}()
	}

	registry := plugin.NewTypeRegistry(nil)
	demoplugins.Register(registry)

	mgr := plugin.NewPluginManager(registry, demoplugins.MetadataProvider(), log).WithConfig(cfg)

	if _, err := mgr.LoadPlugins(context.Background(), cfg.SearchPaths...); err != nil {
		log.Error(err, "startup plugin discovery failed, continuing with whatever loaded")
	}

	if err := newRootCmd(mgr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
