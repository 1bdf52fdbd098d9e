package models

import "time"

type Tracking struct {
  ID            string           `bson:"id" json:"id"`
  URL           string           `bson:"url" json:"url"`
  ShortURL      string           `bson:"short_url" json:"short_url"`
  Name          string           `bson:"name" json:"name"`
  ImageURL      string           `bson:"image_url" json:"image_url"`
  Site          Site             `bson:"site" json:"site"`
  CurrentPrice  float64          `bson:"current_price" json:"current_price"`
  OriginalPrice float64          `bson:"original_price" json:"original_price"`
  TargetPrice   float64          `bson:"target_price" json:"target_price"`
  Contacts      TrackingContacts `bson:"contacts" json:"contacts"`
  Notified      bool             `bson:"notified" json:"notified"`
  CreatedAt     time.Time        `bson:"created_at" json:"created_at"`
}

type TrackingContacts struct {
  Email          string `bson:"email" json:"email,omitempty"`
  Phone          string `bson:"phone" json:"phone,omitempty"`
  TelegramChatId int64  `bson:"telegram_chat_id" json:"telegram_chat_id,omitempty"`
}

func (c TrackingContacts) IsEmpty() bool {
  return c.Email == "" && c.Phone == "" && c.TelegramChatId == 0
}

// IsBelowTarget reports whether the price satisfies the user threshold.
func (t *Tracking) IsBelowTarget(price float64) bool {
  return price <= t.TargetPrice
}

// SeedOriginalPrice keeps the first observed price once it is set.
func (t *Tracking) SeedOriginalPrice(price float64) float64 {
  if t.OriginalPrice > 0 {
    return t.OriginalPrice
  }
  return price
}

type TrackingStats struct {
  TotalProducts    int64   `json:"total_products"`
  PotentialSavings float64 `json:"potential_savings"`
  NearTarget       int64   `json:"near_target"`
  AvgDiscount      float64 `json:"avg_discount"`
}

// NearTargetRatio bounds the "close to target" window: target < price <= target*ratio.
const NearTargetRatio = 1.1

func NewTrackingStats(trackings []Tracking) TrackingStats {
  var (
    stats      TrackingStats
    discounts  float64
    discounted int64
  )

  for _, tracking := range trackings {
    stats.TotalProducts++

    // No price observed yet.
    if tracking.CurrentPrice <= 0 {
      continue
    }

    switch {
    case tracking.CurrentPrice <= tracking.TargetPrice:
      stats.PotentialSavings += tracking.TargetPrice - tracking.CurrentPrice

    case tracking.CurrentPrice <= tracking.TargetPrice*NearTargetRatio:
      stats.NearTarget++
    }

    if tracking.OriginalPrice > 0 {
      discounts += (tracking.OriginalPrice - tracking.CurrentPrice) / tracking.OriginalPrice * 100
      discounted++
    }
  }

  if discounted > 0 {
    stats.AvgDiscount = discounts / float64(discounted)
  }

  return stats
}
