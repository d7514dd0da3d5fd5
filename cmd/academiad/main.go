// Command academiad runs the academic records server: a line-protocol TCP
// service over flat record files, with role-scoped sessions for admins,
// faculty and students.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ashokCh-dev/Academia-Portal/internal/logger"
	"github.com/ashokCh-dev/Academia-Portal/internal/portal"
	"github.com/ashokCh-dev/Academia-Portal/internal/ratelimiter"
	"github.com/ashokCh-dev/Academia-Portal/internal/seed"
	"github.com/ashokCh-dev/Academia-Portal/internal/server"
	"github.com/ashokCh-dev/Academia-Portal/pkg/archive"
	"github.com/ashokCh-dev/Academia-Portal/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	port := flag.Int("port", 0, "Port to listen on (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (DEBUG, INFO, WARN, ERROR; overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger.SetLevel(cfg.Logging.Level)
	if err := setupLogOutput(cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to open log output: %v", err)
	}

	fmt.Println("Academia Portal Server")
	logger.Info("log level set to %s", cfg.Logging.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, closeStores, err := config.CreateStores(ctx, &cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to create record stores: %v", err)
	}
	defer closeStores()

	p := portal.New(stores)

	if err := seed.EnsureAdmin(ctx, p, os.Getenv("ACADEMIA_ADMIN_PASSWORD")); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	target, err := config.CreateArchiveTarget(ctx, &cfg.Archive)
	if err != nil {
		log.Fatalf("Failed to create archive target: %v", err)
	}
	if target != nil {
		snap := archive.NewSnapshotter(cfg.Storage.DataDir, target, cfg.Archive.Interval)
		go snap.Run(ctx)
		logger.Info("archiving every %s to %s target", cfg.Archive.Interval, cfg.Archive.Target)
	}

	opts := []server.Option{
		server.WithMaxConnections(cfg.Server.MaxConnections),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
	}
	if cfg.Server.AcceptRate > 0 {
		opts = append(opts, server.WithAcceptLimiter(
			ratelimiter.New(cfg.Server.AcceptRate, cfg.Server.AcceptBurst)))
	}

	srv := server.New(strconv.Itoa(cfg.Server.Port), p, opts...)
	if err := srv.Serve(ctx); err != nil {
		logger.Error("server error: %v", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func setupLogOutput(output string) error {
	switch output {
	case "", "stdout":
		return nil
	case "stderr":
		logger.SetOutput(os.Stderr)
		return nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		logger.SetOutput(f)
		return nil
	}
}
