// cmd/bernoulli-server/main.go: HTTP front end for the Bernoulli solver.
//
// Usage:
//
//	go run ./cmd/bernoulli-server -config config.yaml
//
// Settings come from the YAML file, then BERNOULLI_* environment variables
// (a .env file in the working directory is loaded first when present).
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/qiniu/x/log"

	"github.com/njchilds90/gobernoulli/internal/config"
	"github.com/njchilds90/gobernoulli/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	log.SetOutputLevel(level)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.New(cfg),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("bernoulli server listening on %s", srv.Addr)
		log.Infof("  POST /solve   solve y' + p(x)y = q(x)y^n")
		log.Infof("  GET  /        HTML form")
		log.Infof("  GET  /schema  request/response description")
		log.Infof("  GET  /healthz health check")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
}
