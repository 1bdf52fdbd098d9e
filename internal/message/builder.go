package message

import (
  "fmt"
  "html"
  "strings"

  "github.com/ushakovn/pricewatch/internal/models"
  "github.com/ushakovn/pricewatch/pkg/money"
)

const AlertSubject = "Price Drop Alert!"

type Builder struct {
  tracking models.Tracking
  price    float64
}

func Do() Builder {
  return Builder{}
}

func (b Builder) SetTracking(tracking models.Tracking) Builder {
  b.tracking = tracking
  return b
}

func (b Builder) SetTrackingPtr(tracking *models.Tracking) Builder {
  b.tracking = *tracking
  return b
}

func (b Builder) SetPrice(price float64) Builder {
  b.price = price
  return b
}

// Alert carries one text per channel for a single price drop.
type Alert struct {
  Subject  string
  Email    string
  Message  string
  Telegram string
}

func (b Builder) BuildAlert() Alert {
  var (
    name   = b.name()
    price  = money.String(b.price)
    target = money.String(b.tracking.TargetPrice)
    link   = b.tracking.URL
  )

  email := fmt.Sprintf(`The price for %s has dropped to %s, which matches or is below your target of %s!

Original URL: %s`, name, price, target, link)

  if b.tracking.ShortURL != "" {
    email += fmt.Sprintf("\nShort URL: %s", b.tracking.ShortURL)
  }

  message := fmt.Sprintf(`Price Drop Alert! %s is now %s (your target: %s). Check it out: %s`,
    name, price, target, link)

  telegram := fmt.Sprintf(`<b>Price Drop Alert!</b>
%s is now <b>%s</b>
Your target: %s

<a href="%s">Open product</a>`,
    html.EscapeString(name), price, target, html.EscapeString(link))

  return Alert{
    Subject:  AlertSubject,
    Email:    strings.TrimSpace(email),
    Message:  strings.TrimSpace(message),
    Telegram: strings.TrimSpace(telegram),
  }
}

func (b Builder) name() string {
  if name := strings.TrimSpace(b.tracking.Name); name != "" {
    return name
  }
  return models.DefaultProductName
}

// BuildTracking renders a tracking card for the Telegram bot.
func (b Builder) BuildTracking() string {
  var text strings.Builder

  fmt.Fprintf(&text, "<b>%s</b>\n", html.EscapeString(b.name()))

  if b.tracking.CurrentPrice > 0 {
    fmt.Fprintf(&text, "Price: %s\n", money.String(b.tracking.CurrentPrice))
  } else {
    text.WriteString("Price: unknown\n")
  }
  fmt.Fprintf(&text, "Target: %s\n", money.String(b.tracking.TargetPrice))

  if b.tracking.Notified {
    text.WriteString("Alert sent ✅\n")
  }

  link := b.tracking.ShortURL
  if link == "" {
    link = b.tracking.URL
  }
  fmt.Fprintf(&text, "ID: <code>%s</code>\n%s", html.EscapeString(b.tracking.ID), html.EscapeString(link))

  return text.String()
}
