package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Bajtii/Object-detection/internal/app"
	"github.com/Bajtii/Object-detection/internal/config"
	"github.com/Bajtii/Object-detection/internal/logger"

	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "notifier",
		Usage: "detect objects on camera frames and notify an HTTP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "optional .env file with configuration",
				Value:   ".env",
				EnvVars: []string{"ENV_FILE"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override LOG_LEVEL (trace, debug, info, warn, error)",
			},
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "notifier: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return err
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("Startup failed: %v", err)
		log.Close()
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "notifier: close: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
