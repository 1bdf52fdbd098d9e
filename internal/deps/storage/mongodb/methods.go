package mongodb

import (
  "context"
  "fmt"
  "reflect"

  log "github.com/sirupsen/logrus"
  "go.mongodb.org/mongo-driver/bson"
  "go.mongodb.org/mongo-driver/mongo"
  "go.mongodb.org/mongo-driver/mongo/options"
)

type CommonParams struct {
  Collection string
  StructType any
}

type FindParams struct {
  CommonParams

  Filters map[string]any
  Sort    map[string]int
  Limit   int64
}

func (p *FindParams) toFilters() bson.D {
  return makeBsonDFilters(p.Filters)
}

func (p *FindParams) toOptions() *options.FindOptions {
  opts := options.Find()

  if p.Limit != 0 {
    opts.SetLimit(p.Limit)
  }
  if len(p.Sort) != 0 {
    sort := make(map[string]any, len(p.Sort))
    for key, order := range p.Sort {
      sort[key] = order
    }
    opts.SetSort(makeBsonD(sort))
  }
  return opts
}

func (c *Client) Find(ctx context.Context, params FindParams) ([]any, error) {
  filters := params.toFilters()
  opts := params.toOptions()

  cursor, err := c.
    collection(params.Collection).
    Find(ctx, filters, opts)

  if err != nil {
    return nil, fmt.Errorf("c.collection.Find: %w", err)
  }

  defer func() {
    if err := cursor.Close(ctx); err != nil {
      log.Errorf("mongodb.Find: cursor.Close: %v", err)
    }
  }()

  out := make([]any, 0, params.Limit)

  for cursor.Next(ctx) {
    doc := any(make(map[string]any))

    if params.StructType != nil {
      typ := reflect.TypeOf(params.StructType)
      doc = reflect.New(typ).Interface()
    }

    if err = cursor.Decode(doc); err != nil {
      return nil, fmt.Errorf("cursor.Decode: %T: %w", doc, err)
    }

    out = append(out, doc)
  }

  if err = cursor.Err(); err != nil {
    return nil, fmt.Errorf("cursor.Err: %w", err)
  }

  return out, nil
}

type GetParams struct {
  CommonParams

  Filters map[string]any
}

func (c *Client) Get(ctx context.Context, params GetParams) (any, error) {
  out, err := c.Find(ctx, FindParams{
    CommonParams: params.CommonParams,
    Filters:      params.Filters,
    Limit:        1,
  })
  if err != nil {
    return nil, fmt.Errorf("c.Find: %w", err)
  }

  if len(out) == 0 {
    return nil, ErrNotFound
  }

  return out[0], nil
}

type InsertParams struct {
  CommonParams

  Document any
}

func (c *Client) Insert(ctx context.Context, params InsertParams) (id any, err error) {
  res, err := c.
    collection(params.Collection).
    InsertOne(ctx, params.Document)

  if err != nil {
    return nil, fmt.Errorf("c.collection.InsertOne: %w", err)
  }

  return res.InsertedID, nil
}

type UpdateParams struct {
  CommonParams

  Filters map[string]any
  Fields  map[string]any
}

// Update sets the given fields on one document. ErrNotFound is returned when nothing matched.
func (c *Client) Update(ctx context.Context, params UpdateParams) error {
  filters := makeBsonDFilters(params.Filters)
  updates := makeBsonDSet(params.Fields)

  res, err := c.
    collection(params.Collection).
    UpdateOne(ctx, filters, updates)

  if err != nil {
    return fmt.Errorf("c.collection.UpdateOne: %w", err)
  }
  if res.MatchedCount == 0 {
    return ErrNotFound
  }

  return nil
}

type DeleteParams struct {
  CommonParams

  Filters map[string]any
}

func (c *Client) Delete(ctx context.Context, params DeleteParams) (count int64, err error) {
  filters := makeBsonDFilters(params.Filters)

  res, err := c.
    collection(params.Collection).
    DeleteOne(ctx, filters)

  if err != nil {
    return 0, fmt.Errorf("c.collection.DeleteOne: %w", err)
  }

  return res.DeletedCount, nil
}

type IndexParams struct {
  CommonParams

  Key    string
  Unique bool
}

func (c *Client) EnsureIndex(ctx context.Context, params IndexParams) error {
  model := mongo.IndexModel{
    Keys:    bson.D{{Key: params.Key, Value: 1}},
    Options: options.Index().SetUnique(params.Unique),
  }

  if _, err := c.collection(params.Collection).Indexes().CreateOne(ctx, model); err != nil {
    return fmt.Errorf("c.collection.Indexes.CreateOne: %w", err)
  }

  return nil
}
