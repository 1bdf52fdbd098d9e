package postgres

import (
  "context"
  "errors"
  "fmt"

  "github.com/jackc/pgx/v5"
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
  current_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
  original_price   DOUBLE PRECISION NOT NULL DEFAULT 0,
  target_price     DOUBLE PRECISION NOT NULL DEFAULT 0,
  email            TEXT,
  phone            TEXT,
  telegram_chat_id BIGINT,
  notified         BOOLEAN NOT NULL DEFAULT false,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const selectProducts = `
SELECT id, url, short_url, name, image, website,
       current_price, original_price, target_price,
       COALESCE(email, ''), COALESCE(phone, ''), COALESCE(telegram_chat_id, 0),
       notified, created_at
  FROM products`

type Trackings struct {
  client *Client
}

func NewTrackings(ctx context.Context, client *Client) (*Trackings, error) {
  if _, err := client.pool.Exec(ctx, schemaProducts); err != nil {
    return nil, fmt.Errorf("client.pool.Exec: %w", err)
  }
  return &Trackings{client: client}, nil
}

func (t *Trackings) ListAll(ctx context.Context) ([]models.Tracking, error) {
  rows, err := t.client.pool.Query(ctx, selectProducts+" ORDER BY created_at DESC")
  if err != nil {
    return nil, fmt.Errorf("t.client.pool.Query: %w", err)
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
  row := t.client.pool.QueryRow(ctx, selectProducts+" WHERE id = $1", id)

  tracking, err := scanTracking(row)
  if err != nil {
    if errors.Is(err, pgx.ErrNoRows) {
      return nil, models.ErrTrackingNotFound
    }
    return nil, fmt.Errorf("scanTracking: %w", err)
  }

  return &tracking, nil
}

func (t *Trackings) Insert(ctx context.Context, tracking models.Tracking) error {
  _, err := t.client.pool.Exec(ctx, `
    INSERT INTO products (
      id, url, short_url, name, image, website,
      current_price, original_price, target_price,
      email, phone, telegram_chat_id, notified, created_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
    tracking.ID, tracking.URL, tracking.ShortURL, tracking.Name, tracking.ImageURL, tracking.Site,
    tracking.CurrentPrice, tracking.OriginalPrice, tracking.TargetPrice,
    lo.EmptyableToPtr(tracking.Contacts.Email), lo.EmptyableToPtr(tracking.Contacts.Phone), lo.EmptyableToPtr(tracking.Contacts.TelegramChatId),
    tracking.Notified, tracking.CreatedAt.UTC(),
  )
  if err != nil {
    return fmt.Errorf("t.client.pool.Exec: %w", err)
  }
  return nil
}

func (t *Trackings) UpdatePrice(ctx context.Context, id string, current, original float64) error {
  return t.exec(ctx,
    `UPDATE products SET current_price = $1, original_price = $2 WHERE id = $3`,
    current, original, id,
  )
}

func (t *Trackings) UpdateNotified(ctx context.Context, id string, notified bool) error {
  return t.exec(ctx,
    `UPDATE products SET notified = $1 WHERE id = $2`,
    notified, id,
  )
}

func (t *Trackings) UpdateTargetPrice(ctx context.Context, id string, target float64) error {
  return t.exec(ctx,
    `UPDATE products SET target_price = $1 WHERE id = $2`,
    target, id,
  )
}

func (t *Trackings) Delete(ctx context.Context, id string) error {
  return t.exec(ctx, `DELETE FROM products WHERE id = $1`, id)
}

func (t *Trackings) exec(ctx context.Context, sql string, args ...any) error {
  tag, err := t.client.pool.Exec(ctx, sql, args...)
  if err != nil {
    return fmt.Errorf("t.client.pool.Exec: %w", err)
  }
  if tag.RowsAffected() == 0 {
    return models.ErrTrackingNotFound
  }
  return nil
}

func scanTracking(row pgx.Row) (models.Tracking, error) {
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
