package extractor

import (
  "context"
  "fmt"

  "github.com/go-playground/validator/v10"
  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/internal/models"
  "github.com/ushakovn/pricewatch/pkg/parser/xpath"
)

type Fetcher interface {
  Fetch(ctx context.Context, url string) (*xpath.HtmlDocument, error)
}

type Dependencies struct {
  Fetcher  Fetcher   `validate:"required"`
  Registry *Registry `validate:"required"`
}

func (d *Dependencies) Validate() error {
  return validator.New().Struct(d)
}

type Extractor struct {
  deps Dependencies
}

func NewExtractor(deps Dependencies) (*Extractor, error) {
  if err := deps.Validate(); err != nil {
    return nil, fmt.Errorf("invalid dependencies: %w", err)
  }
  return &Extractor{deps: deps}, nil
}

// Extract never fails: an unreachable page yields the fallback record.
func (e *Extractor) Extract(ctx context.Context, url string) models.Product {
  rule := e.deps.Registry.Match(url)

  log.
    WithFields(log.Fields{
      "product.url":  url,
      "product.site": rule.Site,
    }).
    Debug("product extraction started")

  doc, err := e.deps.Fetcher.Fetch(ctx, url)
  if err != nil {
    log.
      WithField("product.url", url).
      Warnf("product fetch failed: fallback record used: %v", err)

    return Fallback(url)
  }

  product := Normalize(doc, rule)

  log.
    WithFields(log.Fields{
      "product.url":   url,
      "product.site":  product.Site,
      "product.price": product.Price,
    }).
    Debug("product extracted successfully")

  return product
}
