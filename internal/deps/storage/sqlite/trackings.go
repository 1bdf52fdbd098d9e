package sqlite

import (
  "context"
  "database/sql"
  "errors"
  "fmt"

  "github.com/go-playground/validator/v10"
  _ "github.com/mattn/go-sqlite3"
  "github.com/samber/lo"
  "github.com/ushakovn/pricewatch/internal/models"
)

const schemaProducts = `
CREATE TABLE IF NOT EXISTS products (
  id               TEXT PRIMARY KEY,
  url              TEXT NOT NULL,
  short_url        TEXT NOT NULL DEFAULT '',
  name             TEXT NOT NULL DEFAULT '',
  image            TEXT NOT NULL DEFAULT '',
  website          TEXT NOT NULL DEFAULT '',
  current_price    REAL NOT NULL DEFAULT 0,
  original_price   REAL NOT NULL DEFAULT 0,
  target_price     REAL NOT NULL DEFAULT 0,
  email            TEXT,
  phone            TEXT,
  telegram_chat_id INTEGER,
  notified         BOOLEAN NOT NULL DEFAULT 0,
  created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const selectProducts = `
SELECT id, url, short_url, name, image, website,
       current_price, original_price, target_price,
       COALESCE(email, ''), COALESCE(phone, ''), COALESCE(telegram_chat_id, 0),
       notified, created_at
  FROM products`

type Config struct {
  Path string `validate:"required"`
}

func (c *Config) Validate() error {
  return validator.New().Struct(c)
}

type Trackings struct {
  conn *sql.DB
}

// NewTrackings opens the database file and creates the products table.
// ":memory:" keeps everything in a single in-process connection.
func NewTrackings(ctx context.Context, config Config) (*Trackings, error) {
  if err := config.Validate(); err != nil {
    return nil, fmt.Errorf("invalid config: %w", err)
  }

  conn, err := sql.Open("sqlite3", config.Path)
  if err != nil {
    return nil, fmt.Errorf("sql.Open: %w", err)
  }
  // sqlite allows a single writer; an in-memory database also lives in one connection only.
  conn.SetMaxOpenConns(1)

  if _, err = conn.ExecContext(ctx, schemaProducts); err != nil {
    _ = conn.Close()
    return nil, fmt.Errorf("conn.ExecContext: %w", err)
  }

  return &Trackings{conn: conn}, nil
}

func (t *Trackings) Close() error {
  return t.conn.Close()
}

func (t *Trackings) ListAll(ctx context.Context) ([]models.Tracking, error) {
  rows, err := t.conn.QueryContext(ctx, selectProducts+" ORDER BY created_at DESC")
  if err != nil {
    return nil, fmt.Errorf("t.conn.QueryContext: %w", err)
  }
  defer rows.Close()

  trackings := make([]models.Tracking, 0)

  for rows.Next() {
    tracking, err := scanTracking(rows)
    if err != nil {
      return nil, fmt.Errorf("scanTracking: %w", err)
    }
    trackings = append(trackings, tracking)
  }

  if err = rows.Err(); err != nil {
    return nil, fmt.Errorf("rows.Err: %w", err)
  }

  return trackings, nil
}

func (t *Trackings) Get(ctx context.Context, id string) (*models.Tracking, error) {
  row := t.conn.QueryRowContext(ctx, selectProducts+" WHERE id = ?", id)

  tracking, err := scanTracking(row)
  if err != nil {
    if errors.Is(err, sql.ErrNoRows) {
      return nil, models.ErrTrackingNotFound
    }
    return nil, fmt.Errorf("scanTracking: %w", err)
  }

  return &tracking, nil
}

func (t *Trackings) Insert(ctx context.Context, tracking models.Tracking) error {
  _, err := t.conn.ExecContext(ctx, `
    INSERT INTO products (
      id, url, short_url, name, image, website,
      current_price, original_price, target_price,
      email, phone, telegram_chat_id, notified, created_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
    tracking.ID, tracking.URL, tracking.ShortURL, tracking.Name, tracking.ImageURL, tracking.Site,
    tracking.CurrentPrice, tracking.OriginalPrice, tracking.TargetPrice,
    lo.EmptyableToPtr(tracking.Contacts.Email), lo.EmptyableToPtr(tracking.Contacts.Phone), lo.EmptyableToPtr(tracking.Contacts.TelegramChatId),
    tracking.Notified, tracking.CreatedAt.UTC(),
  )
  if err != nil {
    return fmt.Errorf("t.conn.ExecContext: %w", err)
  }
  return nil
}

func (t *Trackings) UpdatePrice(ctx context.Context, id string, current, original float64) error {
  return t.exec(ctx,
    `UPDATE products SET current_price = ?, original_price = ? WHERE id = ?`,
    current, original, id,
  )
}

func (t *Trackings) UpdateNotified(ctx context.Context, id string, notified bool) error {
  return t.exec(ctx,
    `UPDATE products SET notified = ? WHERE id = ?`,
    notified, id,
  )
}

func (t *Trackings) UpdateTargetPrice(ctx context.Context, id string, target float64) error {
  return t.exec(ctx,
    `UPDATE products SET target_price = ? WHERE id = ?`,
    target, id,
  )
}

func (t *Trackings) Delete(ctx context.Context, id string) error {
  return t.exec(ctx, `DELETE FROM products WHERE id = ?`, id)
}

func (t *Trackings) exec(ctx context.Context, query string, args ...any) error {
  res, err := t.conn.ExecContext(ctx, query, args...)
  if err != nil {
    return fmt.Errorf("t.conn.ExecContext: %w", err)
  }

  affected, err := res.RowsAffected()
  if err != nil {
    return fmt.Errorf("res.RowsAffected: %w", err)
  }
  if affected == 0 {
    return models.ErrTrackingNotFound
  }

  return nil
}

type scanner interface {
  Scan(dest ...any) error
}

func scanTracking(row scanner) (models.Tracking, error) {
  var tracking models.Tracking

  err := row.Scan(
    &tracking.ID, &tracking.URL, &tracking.ShortURL, &tracking.Name, &tracking.ImageURL, &tracking.Site,
    &tracking.CurrentPrice, &tracking.OriginalPrice, &tracking.TargetPrice,
    &tracking.Contacts.Email, &tracking.Contacts.Phone, &tracking.Contacts.TelegramChatId,
    &tracking.Notified, &tracking.CreatedAt,
  )
  if err != nil {
    return models.Tracking{}, err
  }

  return tracking, nil
}
