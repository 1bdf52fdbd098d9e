package notifier

import (
  "context"

  "github.com/samber/lo"
  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/internal/message"
  "github.com/ushakovn/pricewatch/internal/models"
  "github.com/ushakovn/pricewatch/pkg/stringer"
)

type EmailSender interface {
  SendEmail(ctx context.Context, to, subject, body string) error
}

type MessageSender interface {
  SendMessage(ctx context.Context, to, body string) error
}

type TelegramSender interface {
  SendTelegram(ctx context.Context, chatID int64, text string) error
}

// Dependencies are all optional: a channel without a transport is skipped.
type Dependencies struct {
  Email    EmailSender
  Message  MessageSender
  Telegram TelegramSender
}

type Notifier struct {
  deps Dependencies
}

func NewNotifier(deps Dependencies) *Notifier {
  return &Notifier{deps: deps}
}

type Delivery struct {
  Channel models.Channel
  Status  models.DeliveryStatus
  Err     error
}

type Report struct {
  Deliveries []Delivery
}

func (r Report) Attempted() int {
  return len(r.Deliveries)
}

func (r Report) Sent() int {
  return lo.CountBy(r.Deliveries, func(d Delivery) bool {
    return d.Status == models.DeliveryStatusSent
  })
}

// ShouldRetry reports that nothing was delivered and every failure may clear up on a later tick.
func (r Report) ShouldRetry() bool {
  if r.Attempted() == 0 {
    return false
  }
  return lo.EveryBy(r.Deliveries, func(d Delivery) bool {
    return d.Status.IsRetryable()
  })
}

// Notify sends one alert per configured channel. Failures never stop the other channels.
func (n *Notifier) Notify(ctx context.Context, tracking models.Tracking, price float64) Report {
  alert := message.Do().
    SetTracking(tracking).
    SetPrice(price).
    BuildAlert()

  var report Report

  if email := stringer.Strip(tracking.Contacts.Email); email != "" {
    report.add(n.send(tracking, models.ChannelEmail, n.deps.Email != nil, func() error {
      return n.deps.Email.SendEmail(ctx, email, alert.Subject, alert.Email)
    }))
  }

  if phone := NormalizePhone(tracking.Contacts.Phone); phone != "" {
    report.add(n.send(tracking, models.ChannelWhatsApp, n.deps.Message != nil, func() error {
      return n.deps.Message.SendMessage(ctx, phone, alert.Message)
    }))
  }

  if chatID := tracking.Contacts.TelegramChatId; chatID != 0 {
    report.add(n.send(tracking, models.ChannelTelegram, n.deps.Telegram != nil, func() error {
      return n.deps.Telegram.SendTelegram(ctx, chatID, alert.Telegram)
    }))
  }

  return report
}

func (r *Report) add(delivery *Delivery) {
  if delivery != nil {
    r.Deliveries = append(r.Deliveries, *delivery)
  }
}

func (n *Notifier) send(tracking models.Tracking, channel models.Channel, configured bool, call func() error) *Delivery {
  fields := log.Fields{
    "tracking.id":          tracking.ID,
    "notification.channel": channel,
  }

  if !configured {
    log.
      WithFields(fields).
      Warn("notification channel skipped: transport not configured")

    return nil
  }

  err := call()
  status := models.ClassifyDelivery(err)

  entry := log.
    WithFields(fields).
    WithField("notification.status", status)

  switch {
  case err == nil:
    entry.Info("notification sent")

  case status.IsExpected():
    entry.Warnf("notification not delivered: %v", err)

  default:
    entry.Errorf("notification failed unexpectedly: %v", err)
  }

  return &Delivery{
    Channel: channel,
    Status:  status,
    Err:     err,
  }
}

// NormalizePhone keeps digits only and prefixes them with "+".
func NormalizePhone(phone string) string {
  digits := stringer.NormalizeDigits(phone)
  if digits == "" {
    return ""
  }
  return "+" + digits
}
