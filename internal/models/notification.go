package models

import "errors"

var (
  ErrRateLimited      = errors.New("recipient rate limited")
  ErrInvalidRecipient = errors.New("invalid recipient")
)

type Channel string

const (
  ChannelEmail    Channel = "email"
  ChannelWhatsApp Channel = "whatsapp"
  ChannelTelegram Channel = "telegram"
)

type DeliveryStatus string

const (
  DeliveryStatusSent             DeliveryStatus = "sent"
  DeliveryStatusRateLimited      DeliveryStatus = "rate_limited"
  DeliveryStatusInvalidRecipient DeliveryStatus = "invalid_recipient"
  DeliveryStatusFailed           DeliveryStatus = "failed"
)

func ClassifyDelivery(err error) DeliveryStatus {
  switch {
  case err == nil:
    return DeliveryStatusSent
  case errors.Is(err, ErrRateLimited):
    return DeliveryStatusRateLimited
  case errors.Is(err, ErrInvalidRecipient):
    return DeliveryStatusInvalidRecipient
  default:
    return DeliveryStatusFailed
  }
}

// IsExpected reports outcomes providers document as routine.
func (s DeliveryStatus) IsExpected() bool {
  return s == DeliveryStatusRateLimited || s == DeliveryStatusInvalidRecipient
}

// IsRetryable reports outcomes a later tick may still turn into a delivery.
func (s DeliveryStatus) IsRetryable() bool {
  return s == DeliveryStatusRateLimited || s == DeliveryStatusFailed
}
