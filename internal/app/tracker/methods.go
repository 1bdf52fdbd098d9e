package tracker

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/go-playground/validator/v10"
  "github.com/google/uuid"
  "github.com/samber/lo"
  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/internal/models"
  "github.com/ushakovn/pricewatch/pkg/hasher"
  urlvalidator "github.com/ushakovn/pricewatch/pkg/validator"
)

type TrackParams struct {
  URL         string
  TargetPrice float64
  Contacts    models.TrackingContacts
}

type contactsRules struct {
  Email string `validate:"omitempty,email"`
  Phone string `validate:"omitempty,min=7"`
}

func (p *TrackParams) Validate() error {
  if err := urlvalidator.URL(p.URL); err != nil {
    return fmt.Errorf("%w: %v", ErrInvalidURL, err)
  }
  if err := validateTarget(p.TargetPrice); err != nil {
    return err
  }

  rules := contactsRules{
    Email: strings.TrimSpace(p.Contacts.Email),
    Phone: strings.TrimSpace(p.Contacts.Phone),
  }
  if err := validator.New().Struct(rules); err != nil {
    return fmt.Errorf("%w: %v", ErrInvalidContacts, err)
  }

  return nil
}

func validateTarget(target float64) error {
  if target <= 0 {
    return ErrInvalidTargetPrice
  }
  return nil
}

// Track stores a new tracking after one synchronous extraction.
// An unreachable page still produces a tracking built from the fallback record.
func (t *Tracker) Track(ctx context.Context, params TrackParams) (*models.Tracking, error) {
  params.URL = strings.TrimSpace(params.URL)

  if err := params.Validate(); err != nil {
    return nil, err
  }

  product := t.deps.Extractor.Extract(ctx, params.URL)

  id := uuid.NewString()

  tracking := models.Tracking{
    ID:           id,
    URL:          params.URL,
    ShortURL:     t.shortURL(id),
    Name:         product.Name,
    ImageURL:     product.ImageURL,
    Site:         product.Site,
    CurrentPrice: product.Price,
    TargetPrice:  params.TargetPrice,
    Contacts: models.TrackingContacts{
      Email:          strings.TrimSpace(params.Contacts.Email),
      Phone:          strings.TrimSpace(params.Contacts.Phone),
      TelegramChatId: params.Contacts.TelegramChatId,
    },
    CreatedAt: time.Now().UTC(),
  }
  if product.HasPrice() {
    tracking.OriginalPrice = product.Price
  }

  if err := t.deps.Repository.Insert(ctx, tracking); err != nil {
    return nil, fmt.Errorf("t.deps.Repository.Insert: %w", err)
  }

  log.
    WithFields(log.Fields{
      "tracking.id":         tracking.ID,
      "tracking.url":        tracking.URL,
      "tracking.site":       tracking.Site,
      "tracking.price":      tracking.CurrentPrice,
      "tracking.target":     tracking.TargetPrice,
      "product.is_fallback": product.IsFallback,
    }).
    Info("product tracking started")

  return &tracking, nil
}

func (t *Tracker) List(ctx context.Context) ([]models.Tracking, error) {
  trackings, err := t.deps.Repository.ListAll(ctx)
  if err != nil {
    return nil, fmt.Errorf("t.deps.Repository.ListAll: %w", err)
  }
  return trackings, nil
}

func (t *Tracker) Get(ctx context.Context, id string) (*models.Tracking, error) {
  tracking, err := t.deps.Repository.Get(ctx, id)
  if err != nil {
    return nil, fmt.Errorf("t.deps.Repository.Get: %w", err)
  }
  return tracking, nil
}

func (t *Tracker) UpdateTargetPrice(ctx context.Context, id string, target float64) (*models.Tracking, error) {
  if err := validateTarget(target); err != nil {
    return nil, err
  }

  if err := t.deps.Repository.UpdateTargetPrice(ctx, id, target); err != nil {
    return nil, fmt.Errorf("t.deps.Repository.UpdateTargetPrice: %w", err)
  }

  log.
    WithFields(log.Fields{
      "tracking.id":     id,
      "tracking.target": target,
    }).
    Info("tracking target price updated")

  return t.Get(ctx, id)
}

func (t *Tracker) Delete(ctx context.Context, id string) error {
  if err := t.deps.Repository.Delete(ctx, id); err != nil {
    return fmt.Errorf("t.deps.Repository.Delete: %w", err)
  }

  log.
    WithField("tracking.id", id).
    Info("tracking deleted")

  return nil
}

func (t *Tracker) Similar(ctx context.Context, url string) ([]models.Product, error) {
  url = strings.TrimSpace(url)

  if err := urlvalidator.URL(url); err != nil {
    return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
  }
  return t.deps.Similar.FindSimilar(ctx, url), nil
}

func (t *Tracker) Stats(ctx context.Context) (models.TrackingStats, error) {
  trackings, err := t.deps.Repository.ListAll(ctx)
  if err != nil {
    return models.TrackingStats{}, fmt.Errorf("t.deps.Repository.ListAll: %w", err)
  }
  return models.NewTrackingStats(trackings), nil
}

// ResolveShortCode returns the product URL behind a short link code.
func (t *Tracker) ResolveShortCode(ctx context.Context, code string) (string, error) {
  trackings, err := t.deps.Repository.ListAll(ctx)
  if err != nil {
    return "", fmt.Errorf("t.deps.Repository.ListAll: %w", err)
  }

  shortURL := t.shortURLPrefix() + strings.TrimSpace(code)

  tracking, ok := lo.Find(trackings, func(tracking models.Tracking) bool {
    return tracking.ShortURL == shortURL
  })
  if !ok {
    return "", models.ErrTrackingNotFound
  }

  return tracking.URL, nil
}

func (t *Tracker) shortURL(id string) string {
  return t.shortURLPrefix() + hasher.ShortCode(id, shortCodeLength)
}

func (t *Tracker) shortURLPrefix() string {
  return strings.TrimRight(t.config.BaseURL, "/") + "/s/"
}
