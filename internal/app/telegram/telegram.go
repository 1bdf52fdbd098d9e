package telegram

import (
  "context"
  "fmt"

  "github.com/go-playground/validator/v10"
  telegram "github.com/go-telegram/bot"
  "github.com/ushakovn/pricewatch/internal/app/tracker"
  "github.com/ushakovn/pricewatch/internal/models"
)

// Tracker is the part of tracker.Tracker exposed through the bot.
type Tracker interface {
  Track(ctx context.Context, params tracker.TrackParams) (*models.Tracking, error)
  List(ctx context.Context) ([]models.Tracking, error)
  Get(ctx context.Context, id string) (*models.Tracking, error)
  UpdateTargetPrice(ctx context.Context, id string, target float64) (*models.Tracking, error)
  Delete(ctx context.Context, id string) error
  Similar(ctx context.Context, url string) ([]models.Product, error)
}

type Transport struct {
  deps Dependencies
}

type Dependencies struct {
  Tracker  Tracker       `validate:"required"`
  Telegram *telegram.Bot `validate:"required"`
}

func (d *Dependencies) Validate() error {
  return validator.New().Struct(d)
}

func NewTransport(deps Dependencies) (*Transport, error) {
  if err := deps.Validate(); err != nil {
    return nil, fmt.Errorf("deps.Validate: %w", err)
  }
  return &Transport{deps: deps}, nil
}

// Start registers the command handlers and polls updates until ctx is done.
func (b *Transport) Start(ctx context.Context) {
  b.registerHandlers(ctx)

  go b.deps.Telegram.Start(ctx)
}
