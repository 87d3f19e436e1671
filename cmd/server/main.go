package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bingosink/internal/app"
	"bingosink/internal/config"
	"bingosink/internal/logging"
	"bingosink/internal/transport/ws"
)

func main() {
	log.SetFlags(0)

	cfg := &config.ServerConfig{}
	cmd := config.NewServerCmd(cfg, run)
	cobra.CheckErr(cmd.Execute())
}

func run(cmd *cobra.Command, args []string, cfg *config.ServerConfig) error {
	if err := config.Load(cfg.CatalogDir); err != nil {
		return err
	}

	logger := logging.NewStdLogger(cfg.Verbose)
	registry := app.NewRegistry()
	dispatcher := app.NewDispatcher(registry, config.Get())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return ws.Serve(ctx, cfg, dispatcher, logger)
}
