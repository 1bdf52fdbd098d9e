package tracker

import (
  "context"
  "errors"
  "fmt"

  "github.com/go-playground/validator/v10"
  "github.com/ushakovn/pricewatch/internal/models"
)

var (
  ErrInvalidURL         = errors.New("invalid product url")
  ErrInvalidTargetPrice = errors.New("target price must be positive")
  ErrInvalidContacts    = errors.New("invalid contacts")
)

const (
  DefaultBaseURL  = "http://localhost:5000"
  shortCodeLength = 6
)

type Extractor interface {
  Extract(ctx context.Context, url string) models.Product
}

type SimilarFinder interface {
  FindSimilar(ctx context.Context, url string) []models.Product
}

type Config struct {
  BaseURL string `validate:"required,url"`
}

func (c *Config) Validate() error {
  return validator.New().Struct(c)
}

type Dependencies struct {
  Repository models.TrackingRepository `validate:"required"`
  Extractor  Extractor                 `validate:"required"`
  Similar    SimilarFinder             `validate:"required"`
}

func (d *Dependencies) Validate() error {
  return validator.New().Struct(d)
}

type Tracker struct {
  config Config
  deps   Dependencies
}

func NewTracker(config Config, deps Dependencies) (*Tracker, error) {
  if err := config.Validate(); err != nil {
    return nil, fmt.Errorf("invalid config: %w", err)
  }
  if err := deps.Validate(); err != nil {
    return nil, fmt.Errorf("invalid dependencies: %w", err)
  }

  return &Tracker{
    config: config,
    deps:   deps,
  }, nil
}
