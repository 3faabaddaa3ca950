package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/privscan/internal/client/cli"
	"github.com/dmitrijs2005/privscan/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Printf("invalid configuration: %v", err)
		os.Exit(2)
	}

	app := cli.NewApp(cfg, os.Stdin, os.Stdout)

	if err := app.Run(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
