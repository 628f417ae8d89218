package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/group-mailer/internal/api"
	"github.com/ignite/group-mailer/internal/config"
	"github.com/ignite/group-mailer/internal/content"
	"github.com/ignite/group-mailer/internal/groups"
	"github.com/ignite/group-mailer/internal/pkg/logger"
	"github.com/ignite/group-mailer/internal/schedule"
	"github.com/ignite/group-mailer/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	clients, err := storage.NewClients(ctx, cfg.AWS)
	if err != nil {
		logger.Error("failed to build AWS clients", "error", err)
		os.Exit(1)
	}

	directory := groups.NewDirectory(clients.DynamoDB, cfg.Storage.SubscribersTable)
	index := schedule.NewIndex(clients.DynamoDB, cfg.Storage.ScheduleTable)
	contentStore := content.NewStore(clients.S3, cfg.Storage.ContentBucket)
	scheduler := schedule.NewScheduler(contentStore, index, content.KeyFuncFor(cfg.Storage.KeyStrategy))

	handlers := api.NewHandlers(directory, scheduler)
	server := api.NewServer(handlers, cfg.Auth)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
