package mongodb

import (
  "context"
  "errors"
  "fmt"
  "net"
  "net/http"
  "net/url"
  "time"

  "github.com/go-playground/validator/v10"
  log "github.com/sirupsen/logrus"
  "go.mongodb.org/mongo-driver/mongo"
  "go.mongodb.org/mongo-driver/mongo/options"
  "go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
  appName        = "pricewatch"
  connectTimeout = 10 * time.Second
)

var ErrNotFound = errors.New("document not found")

type Client struct {
  client   *mongo.Client
  database string
}

type Config struct {
  Host           string `validate:"required"`
  Port           string `validate:"required"`
  Database       string `validate:"required"`
  Authentication *Authentication
}

type Authentication struct {
  User     string `validate:"required"`
  Password string `validate:"required"`
}

func (c *Config) Validate() error {
  return validator.New().Struct(c)
}

type Dependencies struct {
  Client *http.Client `validate:"required"`
}

func (c *Dependencies) Validate() error {
  return validator.New().Struct(c)
}

// ConnectionString escapes credentials so passwords may carry '@' or ':'.
func (c *Config) ConnectionString() string {
  uri := url.URL{
    Scheme: "mongodb",
    Host:   net.JoinHostPort(c.Host, c.Port),
  }
  if c.Authentication != nil {
    uri.User = url.UserPassword(c.Authentication.User, c.Authentication.Password)
  }
  return uri.String()
}

func NewClient(ctx context.Context, config Config, deps Dependencies) (*Client, error) {
  if err := deps.Validate(); err != nil {
    return nil, fmt.Errorf("invalid dependencies: %w", err)
  }
  if err := config.Validate(); err != nil {
    return nil, fmt.Errorf("invalid config: %w", err)
  }

  opts := options.
    Client().
    SetHTTPClient(deps.Client).
    SetAppName(appName).
    SetConnectTimeout(connectTimeout).
    ApplyURI(config.ConnectionString())

  client, err := mongo.Connect(ctx, opts)
  if err != nil {
    return nil, fmt.Errorf("mongo.Connect: %w", err)
  }

  pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
  defer cancel()

  if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
    _ = client.Disconnect(context.Background())
    return nil, fmt.Errorf("client.Ping: %w", err)
  }

  log.
    WithFields(log.Fields{
      "mongodb.host":     config.Host,
      "mongodb.database": config.Database,
    }).
    Info("mongodb client connected")

  return &Client{
    client:   client,
    database: config.Database,
  }, nil
}

func (c *Client) Close(ctx context.Context) error {
  if err := c.client.Disconnect(ctx); err != nil {
    return fmt.Errorf("c.client.Disconnect: %w", err)
  }
  return nil
}

func (c *Client) collection(name string) *mongo.Collection {
  return c.client.Database(c.database).Collection(name)
}
