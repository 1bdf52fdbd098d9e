package mongodb

import (
  "context"
  "errors"
  "fmt"

  "github.com/ushakovn/pricewatch/internal/models"
)

const collectionTrackings = "trackings"

type Trackings struct {
  client *Client
}

func NewTrackings(ctx context.Context, client *Client) (*Trackings, error) {
  err := client.EnsureIndex(ctx, IndexParams{
    CommonParams: trackingParams(),
    Key:          "id",
    Unique:       true,
  })
  if err != nil {
    return nil, fmt.Errorf("client.EnsureIndex: %w", err)
  }

  return &Trackings{client: client}, nil
}

func trackingParams() CommonParams {
  return CommonParams{
    Collection: collectionTrackings,
    StructType: models.Tracking{},
  }
}

func byID(id string) map[string]any {
  return map[string]any{"id": id}
}

func (t *Trackings) ListAll(ctx context.Context) ([]models.Tracking, error) {
  docs, err := t.client.Find(ctx, FindParams{
    CommonParams: trackingParams(),
    Sort:         map[string]int{"created_at": -1},
  })
  if err != nil {
    return nil, fmt.Errorf("t.client.Find: %w", err)
  }

  trackings := make([]models.Tracking, 0, len(docs))

  for _, doc := range docs {
    tracking, ok := doc.(*models.Tracking)
    if !ok {
      return nil, fmt.Errorf("unexpected document type: %T", doc)
    }
    trackings = append(trackings, *tracking)
  }

  return trackings, nil
}

func (t *Trackings) Get(ctx context.Context, id string) (*models.Tracking, error) {
  doc, err := t.client.Get(ctx, GetParams{
    CommonParams: trackingParams(),
    Filters:      byID(id),
  })
  if err != nil {
    if errors.Is(err, ErrNotFound) {
      return nil, models.ErrTrackingNotFound
    }
    return nil, fmt.Errorf("t.client.Get: %w", err)
  }

  tracking, ok := doc.(*models.Tracking)
  if !ok {
    return nil, fmt.Errorf("unexpected document type: %T", doc)
  }

  return tracking, nil
}

func (t *Trackings) Insert(ctx context.Context, tracking models.Tracking) error {
  _, err := t.client.Insert(ctx, InsertParams{
    CommonParams: trackingParams(),
    Document:     tracking,
  })
  if err != nil {
    return fmt.Errorf("t.client.Insert: %w", err)
  }
  return nil
}

func (t *Trackings) UpdatePrice(ctx context.Context, id string, current, original float64) error {
  return t.update(ctx, id, map[string]any{
    "current_price":  current,
    "original_price": original,
  })
}

func (t *Trackings) UpdateNotified(ctx context.Context, id string, notified bool) error {
  return t.update(ctx, id, map[string]any{
    "notified": notified,
  })
}

func (t *Trackings) UpdateTargetPrice(ctx context.Context, id string, target float64) error {
  return t.update(ctx, id, map[string]any{
    "target_price": target,
  })
}

func (t *Trackings) Delete(ctx context.Context, id string) error {
  count, err := t.client.Delete(ctx, DeleteParams{
    CommonParams: trackingParams(),
    Filters:      byID(id),
  })
  if err != nil {
    return fmt.Errorf("t.client.Delete: %w", err)
  }
  if count == 0 {
    return models.ErrTrackingNotFound
  }
  return nil
}

func (t *Trackings) update(ctx context.Context, id string, fields map[string]any) error {
  err := t.client.Update(ctx, UpdateParams{
    CommonParams: trackingParams(),
    Filters:      byID(id),
    Fields:       fields,
  })
  if err != nil {
    if errors.Is(err, ErrNotFound) {
      return models.ErrTrackingNotFound
    }
    return fmt.Errorf("t.client.Update: %w", err)
  }
  return nil
}
