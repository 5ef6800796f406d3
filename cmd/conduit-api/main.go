package main

import (
	"context"
	"os"

	"github.com/dukex/conduit/pkg/cmd"
	"github.com/dukex/conduit/pkg/config"
	"github.com/dukex/conduit/pkg/log"
	"github.com/dukex/conduit/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "conduit-api",
		Usage:                 "Accept webhook payloads and enqueue them for processing",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file",
				Value:   "./config.json",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on (overrides the config file)",
				Sources: cli.EnvVars("PORT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := config.Load(command.String("config"))
			if err != nil {
				return err
			}

			log.Setup(cfg.LogLevel)

			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing Conduit API")

			tracerProvider, err := otelhelper.InitTracer(ctx, "conduit-api")
			if err != nil {
				logger.WarnContext(ctx, "Tracing disabled", "error", err)
			} else {
				defer func() {
					if err := tracerProvider.Shutdown(context.Background()); err != nil {
						logger.ErrorContext(ctx, "Failed to shut down tracer", "error", err)
					}
				}()
			}

			queueManager := cmd.NewQueueManager(cfg, logger)
			defer func() {
				if err := queueManager.DisconnectAll(context.Background()); err != nil {
					logger.ErrorContext(ctx, "Failed to disconnect queues", "error", err)
				}
			}()

			registry := cmd.NewRegistry(logger)

			api := NewAPI(logger, queueManager, registry, cfg.Settings())

			port := int(command.Int("port"))
			if port == 0 {
				port = cfg.API.Port
			}

			if err := api.Start(cfg.API.Host, port); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
