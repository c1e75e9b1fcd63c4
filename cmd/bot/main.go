package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SDWZORO/GiveAwayBot/internal/common/config"
	"github.com/SDWZORO/GiveAwayBot/internal/common/logger"
	apihttp "github.com/SDWZORO/GiveAwayBot/internal/http"
	"github.com/SDWZORO/GiveAwayBot/internal/notifications"
	"github.com/SDWZORO/GiveAwayBot/internal/platform/telegram"
	"github.com/SDWZORO/GiveAwayBot/internal/scheduler"
	"github.com/SDWZORO/GiveAwayBot/internal/store"
	"github.com/SDWZORO/GiveAwayBot/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("giveaway-bot", cfg.Debug)
	logger.Info().Bool("debug", cfg.Debug).Msg("Starting giveaway bot")

	st, err := store.Open(cfg.DataFile, cfg.Giveaway.MaxWinners)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DataFile).Msg("Failed to open record store")
	}
	defer st.Close()

	client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.RequiredChannels)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize bot client")
	}

	notifier := notifications.NewService(client, st, cfg.Telegram.OwnerID)
	validator := validation.New(st, client)

	sched := scheduler.New(st, notifier, scheduler.Options{
		SweepInterval:   cfg.Scheduler.SweepInterval,
		CleanupInterval: cfg.Scheduler.CleanupInterval,
		LogRetention:    time.Duration(cfg.Scheduler.LogRetentionDays) * 24 * time.Hour,
	})
	sched.Start()

	bot := telegram.NewBot(client, st, validator, notifier, sched, telegram.BotOptions{
		OwnerID:             cfg.Telegram.OwnerID,
		ParticipateCooldown: cfg.Giveaway.ParticipateCooldown,
		DisplayTimezone:     cfg.DisplayTimezone,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bot.Run(ctx)

	server := apihttp.NewServer(st, apihttp.ServerOptions{
		Port:   cfg.Server.Port,
		Origin: cfg.Server.Origin,
		Debug:  cfg.Debug,
	})
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	snapshot := st.Snapshot()
	notifier.NotifyOwner(ctx, fmt.Sprintf(
		"🤖 Bot started.\nActive giveaways: %d\nKnown users: %d",
		snapshot.ActiveGiveaways, snapshot.KnownUsers))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown failed")
	}
	if err := st.Flush(); err != nil {
		logger.Error().Err(err).Msg("Final flush failed")
	}
	logger.Info().Msg("Shutdown complete")
}
