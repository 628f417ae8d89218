package main

import (
	"context"
	"flag"
	"os"

	"github.com/ignite/group-mailer/internal/config"
	"github.com/ignite/group-mailer/internal/pkg/logger"
	"github.com/ignite/group-mailer/internal/storage"
)

// One-shot provisioning of the two DynamoDB tables and the content bucket.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Storage.ContentBucket == "" {
		logger.Error("storage.content_bucket is required")
		os.Exit(1)
	}

	ctx := context.Background()
	clients, err := storage.NewClients(ctx, cfg.AWS)
	if err != nil {
		logger.Error("failed to build AWS clients", "error", err)
		os.Exit(1)
	}

	failed := false
	if err := storage.EnsureTable(ctx, clients.DynamoDB, cfg.Storage.SubscribersTable, "group_name", "subscriber"); err != nil {
		logger.Error("provisioning subscribers table failed", "error", err)
		failed = true
	}
	if err := storage.EnsureTable(ctx, clients.DynamoDB, cfg.Storage.ScheduleTable, "scheduled_date", "group_name"); err != nil {
		logger.Error("provisioning schedule table failed", "error", err)
		failed = true
	}
	if err := storage.EnsureBucket(ctx, clients.S3, cfg.Storage.ContentBucket, cfg.AWS.Region); err != nil {
		logger.Error("provisioning content bucket failed", "error", err)
		failed = true
	}

	if failed {
		os.Exit(1)
	}
	logger.Info("provisioning complete")
}
