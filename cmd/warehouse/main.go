package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a warehouse YAML or JSON document (default: built-in demo)")
	flag.Parse()

	app, err := injector.InitializeApp(injector.ConfigPath(*configPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error starting warehouse:", err)
		os.Exit(1)
	}
	defer func() { _ = app.Logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Logger.Info("warehouse starting",
		log.String("websocket_addr", app.Config.Server.WebSocketAddr),
		log.String("quic_addr", app.Config.Server.QUICAddr))
	if err := app.Server.Run(ctx); err != nil {
		app.Logger.Error("warehouse stopped", log.Error(err))
		os.Exit(1)
	}
}
