package fetcher

import (
  "context"
  "errors"
  "fmt"
  "net/http"
  "time"

  "github.com/cenkalti/backoff/v4"
  "github.com/go-playground/validator/v10"
  "github.com/go-resty/resty/v2"
  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/pkg/parser/xpath"
)

const (
  DefaultTimeout   = 10 * time.Second
  DefaultAttempts  = 3
  DefaultBaseDelay = 2 * time.Second

  DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
  DefaultReferer   = "https://www.google.com/"
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

type Config struct {
  Timeout   time.Duration `validate:"gt=0"`
  Attempts  uint64        `validate:"gt=0"`
  BaseDelay time.Duration `validate:"gte=0"`
  UserAgent string        `validate:"required"`
  Referer   string        `validate:"required"`
}

func (c *Config) Validate() error {
  return validator.New().Struct(c)
}

func DefaultConfig() Config {
  return Config{
    Timeout:   DefaultTimeout,
    Attempts:  DefaultAttempts,
    BaseDelay: DefaultBaseDelay,
    UserAgent: DefaultUserAgent,
    Referer:   DefaultReferer,
  }
}

type Dependencies struct {
  Client *resty.Client `validate:"required"`
}

func (d *Dependencies) Validate() error {
  return validator.New().Struct(d)
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

// Fetch makes up to Attempts GET requests and parses the first 2xx body.
// The last attempt error is returned once every attempt failed.
func (c *Client) Fetch(ctx context.Context, url string) (*xpath.HtmlDocument, error) {
  var (
    attempt int
    doc     *xpath.HtmlDocument
  )

  operation := func() error {
    attempt++

    body, err := c.get(ctx, url)
    if err != nil {
      return err
    }

    doc, err = xpath.ParseHtmlDoc(url, body)
    if err != nil {
      return backoff.Permanent(fmt.Errorf("xpath.ParseHtmlDoc: %w", err))
    }

    return nil
  }

  notify := func(err error, wait time.Duration) {
    log.
      WithFields(log.Fields{
        "fetch.url":     url,
        "fetch.attempt": attempt,
        "fetch.wait":    wait.String(),
      }).
      Warnf("fetch attempt failed: %v", err)
  }

  schedule := backoff.WithContext(
    backoff.WithMaxRetries(newLinearBackOff(c.config.BaseDelay), c.config.Attempts-1),
    ctx,
  )

  if err := backoff.RetryNotify(operation, schedule, notify); err != nil {
    return nil, fmt.Errorf("fetch %s failed after %d attempts: %w", url, attempt, err)
  }

  return doc, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
  attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
  defer cancel()

  resp, err := c.deps.Client.R().
    SetContext(attemptCtx).
    SetHeaders(map[string]string{
      "User-Agent":      c.config.UserAgent,
      "Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
      "Accept-Language": "en-US,en;q=0.5",
      "Referer":         c.config.Referer,
    }).
    Get(url)
  if err != nil {
    return nil, fmt.Errorf("c.deps.Client.R().Get: %w", err)
  }

  if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
    return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status())
  }

  return resp.Body(), nil
}

// linearBackOff waits base*n before the n-th retry.
type linearBackOff struct {
  base time.Duration
  n    int64
}

func newLinearBackOff(base time.Duration) *linearBackOff {
  return &linearBackOff{base: base}
}

func (b *linearBackOff) NextBackOff() time.Duration {
  b.n++
  return b.base * time.Duration(b.n)
}

func (b *linearBackOff) Reset() {
  b.n = 0
}
