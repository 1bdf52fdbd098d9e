package monitor

import (
  "context"
  "fmt"
  "sync/atomic"
  "time"

  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/internal/models"
  "github.com/ushakovn/pricewatch/pkg/worker"
)

type PassResult struct {
  Total    int
  Failed   int
  Notified int
}

// Run makes one pass right away and then one per interval until ctx is done.
// A pass that is running when ctx is cancelled is allowed to finish.
func (m *Monitor) Run(ctx context.Context) error {
  log.
    WithField("monitor.interval", m.config.Interval.String()).
    Info("monitor starting")

  passCtx := context.WithoutCancel(ctx)

  m.runPass(passCtx)

  ticker := time.NewTicker(m.config.Interval)
  defer ticker.Stop()

  for {
    select {
    case <-ctx.Done():
      log.Info("monitor stopped")
      return nil

    case <-ticker.C:
      m.runPass(passCtx)
    }
  }
}

func (m *Monitor) runPass(ctx context.Context) {
  startedAt := time.Now()

  result, err := m.RunPass(ctx)
  if err != nil {
    log.Errorf("monitor pass failed: %v", err)
    return
  }

  log.
    WithFields(log.Fields{
      "monitor.total":    result.Total,
      "monitor.failed":   result.Failed,
      "monitor.notified": result.Notified,
      "monitor.elapsed":  time.Since(startedAt).String(),
    }).
    Info("monitor pass completed")
}

// RunPass checks every tracked item once. Each item is handled by exactly one worker.
// ErrPassInProgress is returned when another pass has not finished yet.
func (m *Monitor) RunPass(ctx context.Context) (PassResult, error) {
  if !m.pass.TryLock() {
    return PassResult{}, ErrPassInProgress
  }
  defer m.pass.Unlock()

  trackings, err := m.deps.Store.ListAll(ctx)
  if err != nil {
    return PassResult{}, fmt.Errorf("m.deps.Store.ListAll: %w", err)
  }

  var failed, notified atomic.Int64

  pool := worker.NewPool(ctx, worker.Config{
    Count:       uint8(m.config.Workers),
    CallTimeout: m.config.ItemTimeout,
  })

  for _, tracking := range trackings {
    pushed := pool.Push(ctx, func(ctx context.Context) error {
      sent, err := m.handleTracking(ctx, tracking)
      if err != nil {
        failed.Add(1)

        log.
          WithFields(log.Fields{
            "tracking.id":  tracking.ID,
            "tracking.url": tracking.URL,
          }).
          Errorf("tracking handle failed: %v", err)

        return nil
      }
      if sent {
        notified.Add(1)
      }
      return nil
    })

    if !pushed {
      log.Warn("monitor pass interrupted: remaining trackings skipped")
      break
    }
  }

  pool.StopWait()

  return PassResult{
    Total:    len(trackings),
    Failed:   int(failed.Load()),
    Notified: int(notified.Load()),
  }, nil
}

// handleTracking applies one observation to the item. It reports whether an alert was delivered.
func (m *Monitor) handleTracking(ctx context.Context, tracking models.Tracking) (bool, error) {
  product := m.deps.Extractor.Extract(ctx, tracking.URL)

  fields := log.Fields{
    "tracking.id":     tracking.ID,
    "tracking.url":    tracking.URL,
    "tracking.target": tracking.TargetPrice,
  }

  if !product.HasPrice() {
    log.
      WithFields(fields).
      WithField("product.is_fallback", product.IsFallback).
      Warn("no price observed: tracking left unchanged")

    return false, nil
  }

  newPrice := product.Price
  fields["tracking.price"] = newPrice

  if previous := tracking.CurrentPrice; newPrice != previous || tracking.OriginalPrice <= 0 {
    original := tracking.SeedOriginalPrice(newPrice)

    if err := m.deps.Store.UpdatePrice(ctx, tracking.ID, newPrice, original); err != nil {
      return false, fmt.Errorf("m.deps.Store.UpdatePrice: %w", err)
    }
    tracking.CurrentPrice = newPrice
    tracking.OriginalPrice = original

    log.
      WithFields(fields).
      WithField("tracking.previous_price", previous).
      Debug("tracking price updated")
  }

  if !tracking.IsBelowTarget(newPrice) {
    if !tracking.Notified {
      return false, nil
    }
    if err := m.deps.Store.UpdateNotified(ctx, tracking.ID, false); err != nil {
      return false, fmt.Errorf("m.deps.Store.UpdateNotified: %w", err)
    }

    log.
      WithFields(fields).
      Info("price back above target: alert episode reset")

    return false, nil
  }

  if tracking.Notified {
    return false, nil
  }

  report := m.deps.Notifier.Notify(ctx, tracking, newPrice)

  if report.ShouldRetry() {
    log.
      WithFields(fields).
      Warn("alert not delivered on any channel: retry on next pass")

    return false, nil
  }

  if err := m.deps.Store.UpdateNotified(ctx, tracking.ID, true); err != nil {
    return false, fmt.Errorf("m.deps.Store.UpdateNotified: %w", err)
  }

  log.
    WithFields(fields).
    WithField("notification.sent", report.Sent()).
    Info("price drop alert dispatched")

  return report.Sent() > 0, nil
}
