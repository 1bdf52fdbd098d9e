package twilio

import (
  "context"
  "errors"
  "fmt"
  "net/http"
  "net/http/httptest"
  "strings"
  "testing"

  "github.com/go-resty/resty/v2"
  "github.com/ushakovn/pricewatch/internal/models"
)

func newTestClient(t *testing.T, baseURL string) *Client {
  t.Helper()

  client, err := NewClient(Config{
    AccountSid: "AC123",
    AuthToken:  "token",
    From:       "+14155238886",
    BaseURL:    baseURL,
  }, Dependencies{Client: resty.New()})
  if err != nil {
    t.Fatalf("NewClient: %v", err)
  }
  return client
}

func TestSendMessage(t *testing.T) {
  server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
      t.Errorf("unexpected path %q", r.URL.Path)
    }
    if user, pass, ok := r.BasicAuth(); !ok || user != "AC123" || pass != "token" {
      t.Errorf("unexpected basic auth %q:%q", user, pass)
    }
    if err := r.ParseForm(); err != nil {
      t.Fatalf("ParseForm: %v", err)
    }
    if got := r.PostForm.Get("To"); got != "whatsapp:+15551234567" {
      t.Errorf("To = %q", got)
    }
    if got := r.PostForm.Get("From"); got != "whatsapp:+14155238886" {
      t.Errorf("From = %q", got)
    }
    if got := r.PostForm.Get("Body"); got != "hello" {
      t.Errorf("Body = %q", got)
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    fmt.Fprint(w, `{"sid":"SM1","status":"queued"}`)
  }))
  defer server.Close()

  if err := newTestClient(t, server.URL).SendMessage(context.Background(), "+15551234567", "hello"); err != nil {
    t.Fatalf("SendMessage: %v", err)
  }
}

func TestSendMessageClassifiesErrors(t *testing.T) {
  cases := []struct {
    name   string
    status int
    body   string
    want   models.DeliveryStatus
  }{
    {
      name:   "daily limit",
      status: http.StatusTooManyRequests,
      body:   `{"code":63038,"message":"daily messages limit exceeded","status":429}`,
      want:   models.DeliveryStatusRateLimited,
    },
    {
      name:   "unsubscribed recipient",
      status: http.StatusBadRequest,
      body:   `{"code":21610,"message":"attempt to send to unsubscribed recipient","status":400}`,
      want:   models.DeliveryStatusInvalidRecipient,
    },
    {
      name:   "invalid number",
      status: http.StatusBadRequest,
      body:   `{"code":21211,"message":"invalid 'To' phone number","status":400}`,
      want:   models.DeliveryStatusInvalidRecipient,
    },
    {
      name:   "authentication",
      status: http.StatusUnauthorized,
      body:   `{"code":20003,"message":"authenticate","status":401}`,
      want:   models.DeliveryStatusFailed,
    },
    {
      name:   "plain server error",
      status: http.StatusBadGateway,
      body:   `bad gateway`,
      want:   models.DeliveryStatusFailed,
    },
  }

  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if strings.HasPrefix(tc.body, "{") {
          w.Header().Set("Content-Type", "application/json")
        } else {
          w.Header().Set("Content-Type", "text/plain")
        }
        w.WriteHeader(tc.status)
        fmt.Fprint(w, tc.body)
      }))
      defer server.Close()

      err := newTestClient(t, server.URL).SendMessage(context.Background(), "+15551234567", "hello")
      if err == nil {
        t.Fatal("expected error")
      }

      if got := models.ClassifyDelivery(err); got != tc.want {
        t.Errorf("ClassifyDelivery(%v) = %s, want %s", err, got, tc.want)
      }

      var apiErr *APIError
      if !errors.As(err, &apiErr) || apiErr.Status != tc.status {
        t.Errorf("expected APIError with status %d, got %v", tc.status, err)
      }
    })
  }
}
