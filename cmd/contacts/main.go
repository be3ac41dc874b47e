package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/contactkeeper/internal/cli"
	"github.com/dmitrijs2005/contactkeeper/internal/config"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/metrics"
	"github.com/dmitrijs2005/contactkeeper/internal/tracing"
)

func main() {

	if err := run(os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("%v", err)
	}

}

func run(in io.Reader, out, logOut io.Writer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewTextLogger(logOut, cfg.LogLevel)

	shutdown, err := tracing.Init(ctx, logger, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error(ctx, "tracing init failed", "error", err)
	} else {
		defer func() { _ = shutdown(context.Background()) }()
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
	}

	app, closeStore, err := cli.Build(ctx, cfg, logger, in, out)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error(ctx, "close store", "error", err)
		}
	}()

	app.Run(ctx)
	return nil
}
