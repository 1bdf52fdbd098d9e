package postgres

import (
  "context"
  "fmt"

  "github.com/go-playground/validator/v10"
  "github.com/jackc/pgx/v5/pgxpool"
)

const defaultMaxConns = 4

type Config struct {
  DSN      string `validate:"required"`
  MaxConns int32  `validate:"gte=0"`
}

func (c *Config) Validate() error {
  return validator.New().Struct(c)
}

type Client struct {
  pool *pgxpool.Pool
}

func NewClient(ctx context.Context, config Config) (*Client, error) {
  if err := config.Validate(); err != nil {
    return nil, fmt.Errorf("invalid config: %w", err)
  }

  poolConfig, err := pgxpool.ParseConfig(config.DSN)
  if err != nil {
    return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
  }

  poolConfig.MaxConns = config.MaxConns
  if poolConfig.MaxConns <= 0 {
    poolConfig.MaxConns = defaultMaxConns
  }

  pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
  if err != nil {
    return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
  }

  if err = pool.Ping(ctx); err != nil {
    pool.Close()
    return nil, fmt.Errorf("pool.Ping: %w", err)
  }

  return &Client{pool: pool}, nil
}

func (c *Client) Close() {
  c.pool.Close()
}
