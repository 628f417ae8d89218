package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/ignite/group-mailer/internal/config"
	"github.com/ignite/group-mailer/internal/content"
	"github.com/ignite/group-mailer/internal/dispatch"
	"github.com/ignite/group-mailer/internal/groups"
	"github.com/ignite/group-mailer/internal/mailer"
	"github.com/ignite/group-mailer/internal/pkg/logger"
	"github.com/ignite/group-mailer/internal/schedule"
	"github.com/ignite/group-mailer/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single dispatch invocation and exit")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Mail.SourceEmail == "" {
		logger.Error("mail.source_email is required")
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
	sender := mailer.NewSESSender(clients.SES, cfg.Mail.SourceEmail)

	dispatcher := dispatch.New(index, directory, contentStore, sender)
	dispatcher.SetLookback(cfg.Dispatch.LookbackBuckets)

	run := func() {
		if err := dispatcher.Run(ctx); err != nil {
			logger.Error("dispatch invocation failed", "error", err)
		}
	}

	if *once {
		run()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Dispatch.CronSpec, run); err != nil {
		logger.Error("invalid cron expression", "cron", cfg.Dispatch.CronSpec, "error", err)
		os.Exit(1)
	}

	logger.Info("dispatcher started", "cron", cfg.Dispatch.CronSpec, "lookback", cfg.Dispatch.LookbackBuckets)
	run()
	c.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("dispatcher stopping")
	<-c.Stop().Done()
}
