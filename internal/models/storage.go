package models

import (
  "context"
  "errors"
)

var ErrTrackingNotFound = errors.New("tracking not found")

// TrackingStore is the part of the storage the monitor needs. Every call is atomic.
type TrackingStore interface {
  ListAll(ctx context.Context) ([]Tracking, error)
  UpdatePrice(ctx context.Context, id string, current, original float64) error
  UpdateNotified(ctx context.Context, id string, notified bool) error
}

type TrackingRepository interface {
  TrackingStore

  Insert(ctx context.Context, tracking Tracking) error
  Get(ctx context.Context, id string) (*Tracking, error)
  UpdateTargetPrice(ctx context.Context, id string, target float64) error
  Delete(ctx context.Context, id string) error
}
