package main

import (
  "context"
  "os/signal"
  "syscall"

  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/internal/app/monitor"
  "github.com/ushakovn/pricewatch/internal/config"
  "github.com/ushakovn/pricewatch/internal/setup"
  "github.com/ushakovn/pricewatch/pkg/logger"
)

func main() {
  config.Load()

  logger.InitWithFields(map[string]any{
    "app": "monitor",
  })

  ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
  defer stop()

  log.Warn("monitor app initializing")

  repo, closeRepo, err := setup.NewRepository(ctx)
  if err != nil {
    log.Fatalf("setup.NewRepository: %v", err)
  }
  defer closeRepo()

  ext, err := setup.NewExtractor(ctx)
  if err != nil {
    log.Fatalf("setup.NewExtractor: %v", err)
  }

  notify, err := setup.NewNotifier(ctx)
  if err != nil {
    log.Fatalf("setup.NewNotifier: %v", err)
  }

  monitorConfig := monitor.Config{
    Interval:    config.Get(ctx, config.MonitorInterval).Duration(),
    Workers:     config.Get(ctx, config.MonitorWorkers).Int(),
    ItemTimeout: config.Get(ctx, config.MonitorItemTimeout).Duration(),
  }

  priceMonitor, err := monitor.NewMonitor(monitorConfig, monitor.Dependencies{
    Store:     repo,
    Extractor: ext,
    Notifier:  notify,
  })
  if err != nil {
    log.Fatalf("monitor.NewMonitor: %v", err)
  }

  if err = priceMonitor.Run(ctx); err != nil {
    log.Errorf("priceMonitor.Run: %v", err)
  }

  log.Warn("monitor app terminating")
}
