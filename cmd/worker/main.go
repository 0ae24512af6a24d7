// Command worker runs the Temporal worker hosting the domain search
// workflow and its activities.
package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"go.temporal.io/sdk/client"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/AutumnsGrove/grove-domain-tool/internal/configuration"
	"github.com/AutumnsGrove/grove-domain-tool/internal/worker"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := configuration.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load configuration")
	}
	if level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err == nil {
		logger = logger.Level(level)
	}

	orchestrator, err := worker.BuildOrchestrator(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build search engine")
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to temporal")
	}
	defer temporalClient.Close()

	w := sdkworker.New(temporalClient, cfg.Temporal.TaskQueue, sdkworker.Options{})
	worker.RegisterAll(w, orchestrator)

	logger.Info().
		Str("task_queue", cfg.Temporal.TaskQueue).
		Str("host_port", cfg.Temporal.HostPort).
		Msg("worker starting")

	if err := w.Run(sdkworker.InterruptCh()); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
}
