package monitor

import (
  "context"
  "errors"
  "fmt"
  "sync"
  "time"

  "github.com/go-playground/validator/v10"
  "github.com/ushakovn/pricewatch/internal/app/notifier"
  "github.com/ushakovn/pricewatch/internal/models"
)

const (
  DefaultInterval    = time.Minute
  DefaultWorkers     = 5
  DefaultItemTimeout = 45 * time.Second
)

var ErrPassInProgress = errors.New("monitor pass already in progress")

type Extractor interface {
  Extract(ctx context.Context, url string) models.Product
}

type Notifier interface {
  Notify(ctx context.Context, tracking models.Tracking, price float64) notifier.Report
}

type Config struct {
  Interval    time.Duration `validate:"gt=0"`
  Workers     int           `validate:"gt=0,lte=255"`
  ItemTimeout time.Duration `validate:"gte=0"`
}

func (c *Config) Validate() error {
  return validator.New().Struct(c)
}

func DefaultConfig() Config {
  return Config{
    Interval:    DefaultInterval,
    Workers:     DefaultWorkers,
    ItemTimeout: DefaultItemTimeout,
  }
}

type Dependencies struct {
  Store     models.TrackingStore `validate:"required"`
  Extractor Extractor            `validate:"required"`
  Notifier  Notifier             `validate:"required"`
}

func (d *Dependencies) Validate() error {
  return validator.New().Struct(d)
}

type Monitor struct {
  config Config
  deps   Dependencies
  pass   sync.Mutex
}

func NewMonitor(config Config, deps Dependencies) (*Monitor, error) {
  if err := config.Validate(); err != nil {
    return nil, fmt.Errorf("invalid config: %w", err)
  }
  if err := deps.Validate(); err != nil {
    return nil, fmt.Errorf("invalid dependencies: %w", err)
  }

  return &Monitor{
    config: config,
    deps:   deps,
  }, nil
}
