// Command towersiege runs a standalone towersiege server, loading its
// configuration from a TOML file and driving the service loop until an
// operator stops it from the console.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/towersiege/server/server"
	"github.com/towersiege/server/server/console"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the server configuration file")
	flag.Parse()

	uc, err := server.LoadUserConfig(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: server.ParseLogLevel(uc.Server.LogLevel),
	}))
	slog.SetDefault(log)

	conf, err := uc.Config(log)
	if err != nil {
		log.Error("build config", "error", err)
		os.Exit(1)
	}

	srv := conf.New()
	srv.Listen()
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go console.New(srv, log).Run(ctx)

	go srv.Run()

	<-ctx.Done()
	log.Info("shutting down")
}
