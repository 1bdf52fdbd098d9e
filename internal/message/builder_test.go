package message

import (
  "strings"
  "testing"

  "github.com/ushakovn/pricewatch/internal/models"
)

func TestBuildAlert(t *testing.T) {
  tracking := models.Tracking{
    URL:         "https://www.amazon.com/dp/B09B8V1LZ3",
    ShortURL:    "http://localhost:5000/s/a1b2c3",
    Name:        "Echo Dot & Stand",
    TargetPrice: 40,
  }

  alert := Do().SetTracking(tracking).SetPrice(35).BuildAlert()

  if alert.Subject != "Price Drop Alert!" {
    t.Errorf("Subject = %q", alert.Subject)
  }

  wantEmail := "The price for Echo Dot & Stand has dropped to $35.00, which matches or is below your target of $40.00!\n\n" +
    "Original URL: https://www.amazon.com/dp/B09B8V1LZ3\n" +
    "Short URL: http://localhost:5000/s/a1b2c3"
  if alert.Email != wantEmail {
    t.Errorf("Email = %q, want %q", alert.Email, wantEmail)
  }

  wantMessage := "Price Drop Alert! Echo Dot & Stand is now $35.00 (your target: $40.00). Check it out: https://www.amazon.com/dp/B09B8V1LZ3"
  if alert.Message != wantMessage {
    t.Errorf("Message = %q, want %q", alert.Message, wantMessage)
  }

  if !strings.Contains(alert.Telegram, "Echo Dot &amp; Stand") {
    t.Errorf("Telegram text is not escaped: %q", alert.Telegram)
  }
  if !strings.Contains(alert.Telegram, "<b>$35.00</b>") {
    t.Errorf("Telegram text misses price: %q", alert.Telegram)
  }
}

func TestBuildAlertDefaultName(t *testing.T) {
  alert := Do().SetTracking(models.Tracking{TargetPrice: 10}).SetPrice(9.5).BuildAlert()

  if !strings.HasPrefix(alert.Message, "Price Drop Alert! Product is now $9.50") {
    t.Errorf("Message = %q", alert.Message)
  }
  if strings.Contains(alert.Email, "Short URL") {
    t.Errorf("Email mentions a missing short url: %q", alert.Email)
  }
}

func TestBuildTracking(t *testing.T) {
  tracking := models.Tracking{
    ID:           "a1b2",
    URL:          "https://www.flipkart.com/item/p/itm1",
    Name:         "Kettle <1.5L>",
    CurrentPrice: 1299,
    TargetPrice:  999,
  }

  text := Do().SetTracking(tracking).BuildTracking()

  want := "<b>Kettle &lt;1.5L&gt;</b>\n" +
    "Price: $1,299.00\n" +
    "Target: $999.00\n" +
    "ID: <code>a1b2</code>\n" +
    "https://www.flipkart.com/item/p/itm1"
  if text != want {
    t.Errorf("BuildTracking() = %q, want %q", text, want)
  }

  tracking.CurrentPrice = 0
  tracking.Notified = true
  tracking.ShortURL = "http://localhost:5000/s/abc123"

  text = Do().SetTracking(tracking).BuildTracking()

  for _, part := range []string{"Price: unknown", "Alert sent", "http://localhost:5000/s/abc123"} {
    if !strings.Contains(text, part) {
      t.Errorf("BuildTracking() = %q, missing %q", text, part)
    }
  }
}
