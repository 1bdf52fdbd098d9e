package twilio

import (
  "context"
  "fmt"
  "net/http"

  "github.com/go-playground/validator/v10"
  "github.com/go-resty/resty/v2"
  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/internal/models"
)

const DefaultBaseURL = "https://api.twilio.com"

const (
  codeDailyLimit       = 63038
  codeUnsubscribed     = 21610
  codeInvalidTo        = 21211
  codeNotMobileNumber  = 21614
  whatsAppAddrTemplate = "whatsapp:%s"
)

type Config struct {
  AccountSid string `validate:"required"`
  AuthToken  string `validate:"required"`
  From       string `validate:"required"`
  BaseURL    string `validate:"required,url"`
}

func (c *Config) Validate() error {
  return validator.New().Struct(c)
}

type Dependencies struct {
  Client *resty.Client `validate:"required"`
}

func (d *Dependencies) Validate() error {
  return validator.New().Struct(d)
}

// APIError is the error body returned by the Twilio REST API.
type APIError struct {
  Code     int    `json:"code"`
  Message  string `json:"message"`
  MoreInfo string `json:"more_info"`
  Status   int    `json:"status"`
}

func (e *APIError) Error() string {
  return fmt.Sprintf("twilio error %d (status %d): %s", e.Code, e.Status, e.Message)
}

// Unwrap exposes the delivery classification of documented codes.
func (e *APIError) Unwrap() error {
  switch {
  case e.Code == codeDailyLimit || e.Status == http.StatusTooManyRequests:
    return models.ErrRateLimited

  case e.Code == codeUnsubscribed || e.Code == codeInvalidTo || e.Code == codeNotMobileNumber:
    return models.ErrInvalidRecipient

  default:
    return nil
  }
}

type messageResponse struct {
  Sid    string `json:"sid"`
  Status string `json:"status"`
}

type Client struct {
  config Config
  deps   Dependencies
}

func NewClient(config Config, deps Dependencies) (*Client, error) {
  if err := config.Validate(); err != nil {
    return nil, fmt.Errorf("invalid config: %w", err)
  }
  if err := deps.Validate(); err != nil {
    return nil, fmt.Errorf("invalid dependencies: %w", err)
  }

  return &Client{
    config: config,
    deps:   deps,
  }, nil
}

// SendMessage sends a WhatsApp message. The phone must already be in +digits form.
func (c *Client) SendMessage(ctx context.Context, to, body string) error {
  var (
    sent    messageResponse
    failure APIError
  )

  resp, err := c.deps.Client.R().
    SetContext(ctx).
    SetBasicAuth(c.config.AccountSid, c.config.AuthToken).
    SetFormData(map[string]string{
      "From": fmt.Sprintf(whatsAppAddrTemplate, c.config.From),
      "To":   fmt.Sprintf(whatsAppAddrTemplate, to),
      "Body": body,
    }).
    SetResult(&sent).
    SetError(&failure).
    Post(c.messagesURL())
  if err != nil {
    return fmt.Errorf("c.deps.Client.R().Post: %w", err)
  }

  if resp.IsError() {
    if failure.Status == 0 {
      failure.Status = resp.StatusCode()
    }
    if failure.Message == "" {
      failure.Message = resp.Status()
    }
    return &failure
  }

  log.
    WithFields(log.Fields{
      "twilio.sid":    sent.Sid,
      "twilio.status": sent.Status,
    }).
    Debug("whatsapp message queued")

  return nil
}

func (c *Client) messagesURL() string {
  return fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.config.BaseURL, c.config.AccountSid)
}
