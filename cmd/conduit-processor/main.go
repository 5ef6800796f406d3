package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukex/conduit/pkg/cmd"
	"github.com/dukex/conduit/pkg/config"
	"github.com/dukex/conduit/pkg/log"
	"github.com/dukex/conduit/pkg/metrics"
	"github.com/dukex/conduit/pkg/otelhelper"
	"github.com/dukex/conduit/pkg/processor"
	"github.com/dukex/conduit/pkg/scheduler"
	"github.com/dukex/conduit/pkg/workflows/ticker"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "conduit-processor",
		Usage:                 "Poll workflow queues and execute workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file",
				Value:   "./config.json",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.StringFlag{
				Name:    "processor-id",
				Aliases: []string{"id"},
				Usage:   "Custom processor ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("PROCESSOR_ID"),
			},
		},
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return err
	}

	log.Setup(cfg.LogLevel)

	processorID := command.String("processor-id")
	if processorID == "" {
		processorID = "processor-" + uuid.New().String()[:8]
	}

	logger := log.WithModule("conduit-processor").With("processorId", processorID)

	logger.InfoContext(ctx, "Initializing Conduit Processor")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := otelhelper.InitTracer(ctx, "conduit-processor")
	if err != nil {
		logger.WarnContext(ctx, "Tracing disabled", "error", err)
	} else {
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.ErrorContext(ctx, "Failed to shut down tracer", "error", err)
			}
		}()
	}

	meterProvider, err := otelhelper.InitMeter(ctx, "conduit-processor")
	if err != nil {
		logger.WarnContext(ctx, "Metrics export disabled", "error", err)
	} else {
		defer func() {
			if err := meterProvider.Shutdown(context.Background()); err != nil {
				logger.ErrorContext(ctx, "Failed to shut down meter", "error", err)
			}
		}()
	}

	m, err := metrics.New("conduit-processor")
	if err != nil {
		return err
	}

	queueManager := cmd.NewQueueManager(cfg, logger)
	defer func() {
		if err := queueManager.DisconnectAll(context.Background()); err != nil {
			logger.ErrorContext(ctx, "Failed to disconnect queues", "error", err)
		}
	}()

	registry := cmd.NewRegistry(logger)
	settings := cfg.Settings()

	sched := scheduler.New(queueManager, logger)

	for name, s := range settings {
		if !s.Config.Enabled || s.Schedule == "" {
			continue
		}

		if err := sched.Add(name, s.Route, s.Schedule); err != nil {
			return err
		}
	}

	sched.Start()
	defer sched.Stop()

	if s, ok := settings["ticker"]; ok && s.Config.Enabled {
		streamer, err := ticker.NewStreamer("ticker", s.Route, s.Options, queueManager, logger)
		if err != nil {
			return err
		}

		go func() {
			if err := streamer.Run(ctx); err != nil {
				logger.ErrorContext(ctx, "Ticker stream stopped", "error", err)
			}
		}()
	}

	proc := processor.New(
		queueManager,
		registry,
		settings,
		m,
		time.Duration(cfg.Processor.PollIntervalSeconds)*time.Second,
		logger,
	)

	if tracerProvider != nil {
		proc = proc.WithTracer(tracerProvider.Tracer("conduit-processor"))
	}

	proc.Run(ctx)

	logger.InfoContext(ctx, "Conduit Processor stopped")

	return nil
}
