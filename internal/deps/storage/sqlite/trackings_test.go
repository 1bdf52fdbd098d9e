package sqlite

import (
  "context"
  "testing"

  "github.com/ushakovn/pricewatch/internal/deps/storage/storagetest"
)

func TestTrackingsRepository(t *testing.T) {
  repo, err := NewTrackings(context.Background(), Config{Path: ":memory:"})
  if err != nil {
    t.Fatalf("NewTrackings: %v", err)
  }
  defer repo.Close()

  storagetest.RunTrackingRepository(t, repo)
}

func TestNewTrackingsRequiresPath(t *testing.T) {
  if _, err := NewTrackings(context.Background(), Config{}); err == nil {
    t.Error("expected config validation error")
  }
}
