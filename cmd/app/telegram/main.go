package main

import (
  "context"
  "os/signal"
  "syscall"

  log "github.com/sirupsen/logrus"
  tgtransport "github.com/ushakovn/pricewatch/internal/app/telegram"
  "github.com/ushakovn/pricewatch/internal/config"
  tgbot "github.com/ushakovn/pricewatch/internal/deps/telegram"
  "github.com/ushakovn/pricewatch/internal/setup"
  "github.com/ushakovn/pricewatch/pkg/logger"
)

func main() {
  config.Load()

  logger.InitWithFields(map[string]any{
    "app": "telegram",
  })

  ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
  defer stop()

  log.Warn("telegram bot app initializing")

  repo, closeRepo, err := setup.NewRepository(ctx)
  if err != nil {
    log.Fatalf("setup.NewRepository: %v", err)
  }
  defer closeRepo()

  trackerClient, err := setup.NewTracker(ctx, repo)
  if err != nil {
    log.Fatalf("setup.NewTracker: %v", err)
  }

  telegramBotClient, err := tgbot.NewBotClient(tgbot.Config{
    Token: config.Get(ctx, config.TelegramToken).String(),
  })
  if err != nil {
    log.Fatalf("tgbot.NewBotClient: %v", err)
  }

  telegramBotTransport, err := tgtransport.NewTransport(tgtransport.Dependencies{
    Tracker:  trackerClient,
    Telegram: telegramBotClient,
  })
  if err != nil {
    log.Fatalf("tgtransport.NewTransport: %v", err)
  }

  telegramBotTransport.Start(ctx)

  <-ctx.Done()

  log.Warn("telegram bot app terminating")
}
