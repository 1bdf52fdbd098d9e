// Package storagetest holds the behaviour every tracking repository backend must share.
package storagetest

import (
  "context"
  "errors"
  "testing"
  "time"

  "github.com/google/uuid"
  "github.com/ushakovn/pricewatch/internal/models"
)

func NewTracking() models.Tracking {
  return models.Tracking{
    ID:            uuid.NewString(),
    URL:           "https://www.amazon.com/dp/B09B8V1LZ3",
    ShortURL:      "http://localhost:5000/s/abc123",
    Name:          "Echo Dot",
    ImageURL:      "https://m.media-amazon.com/images/I/echo.jpg",
    Site:          models.SiteAmazon,
    CurrentPrice:  50,
    OriginalPrice: 50,
    TargetPrice:   40,
    Contacts: models.TrackingContacts{
      Email: "buyer@example.com",
      Phone: "+15551234567",
    },
    CreatedAt: time.Now().UTC().Truncate(time.Second),
  }
}

// RunTrackingRepository checks round trips, targeted updates and missing ids.
func RunTrackingRepository(t *testing.T, repo models.TrackingRepository) {
  t.Helper()
  ctx := context.Background()

  tracking := NewTracking()
  other := NewTracking()
  other.Contacts = models.TrackingContacts{TelegramChatId: 42}

  for _, item := range []models.Tracking{tracking, other} {
    if err := repo.Insert(ctx, item); err != nil {
      t.Fatalf("Insert: %v", err)
    }
  }

  got, err := repo.Get(ctx, tracking.ID)
  if err != nil {
    t.Fatalf("Get: %v", err)
  }
  if got.URL != tracking.URL || got.Name != tracking.Name || got.TargetPrice != tracking.TargetPrice {
    t.Errorf("Get = %+v, want %+v", got, tracking)
  }
  if got.Contacts != tracking.Contacts {
    t.Errorf("Get contacts = %+v, want %+v", got.Contacts, tracking.Contacts)
  }
  if !got.CreatedAt.Equal(tracking.CreatedAt) {
    t.Errorf("Get created_at = %v, want %v", got.CreatedAt, tracking.CreatedAt)
  }

  if err = repo.UpdatePrice(ctx, tracking.ID, 35, 50); err != nil {
    t.Fatalf("UpdatePrice: %v", err)
  }
  if err = repo.UpdateNotified(ctx, tracking.ID, true); err != nil {
    t.Fatalf("UpdateNotified(true): %v", err)
  }
  if err = repo.UpdateTargetPrice(ctx, tracking.ID, 30); err != nil {
    t.Fatalf("UpdateTargetPrice: %v", err)
  }

  got, err = repo.Get(ctx, tracking.ID)
  if err != nil {
    t.Fatalf("Get: %v", err)
  }
  if got.CurrentPrice != 35 || got.OriginalPrice != 50 || got.TargetPrice != 30 || !got.Notified {
    t.Errorf("after updates = %+v", got)
  }

  if err = repo.UpdateNotified(ctx, tracking.ID, false); err != nil {
    t.Fatalf("UpdateNotified(false): %v", err)
  }
  if got, err = repo.Get(ctx, tracking.ID); err != nil || got.Notified {
    t.Errorf("notified not reset: %+v, %v", got, err)
  }

  all, err := repo.ListAll(ctx)
  if err != nil {
    t.Fatalf("ListAll: %v", err)
  }
  if len(all) != 2 {
    t.Errorf("ListAll returned %d trackings, want 2", len(all))
  }

  if err = repo.Delete(ctx, other.ID); err != nil {
    t.Fatalf("Delete: %v", err)
  }
  if _, err = repo.Get(ctx, other.ID); !errors.Is(err, models.ErrTrackingNotFound) {
    t.Errorf("Get after Delete: got %v, want ErrTrackingNotFound", err)
  }

  missing := uuid.NewString()

  checks := map[string]error{
    "Get":               getErr(repo.Get(ctx, missing)),
    "UpdatePrice":       repo.UpdatePrice(ctx, missing, 1, 1),
    "UpdateNotified":    repo.UpdateNotified(ctx, missing, true),
    "UpdateTargetPrice": repo.UpdateTargetPrice(ctx, missing, 1),
    "Delete":            repo.Delete(ctx, missing),
  }
  for name, err := range checks {
    if !errors.Is(err, models.ErrTrackingNotFound) {
      t.Errorf("%s on missing id: got %v, want ErrTrackingNotFound", name, err)
    }
  }
}

func getErr(_ *models.Tracking, err error) error {
  return err
}
