package mongodb

import (
  "sort"

  "go.mongodb.org/mongo-driver/bson"
)

// makeBsonDSet keeps zero values: false and 0 are meaningful updates.
func makeBsonDSet(fields map[string]any) bson.D {
  return bson.D{{
    Key:   "$set",
    Value: makeBsonD(fields),
  }}
}

func makeBsonDFilters(kv map[string]any) bson.D {
  return makeBsonD(kv)
}

func makeBsonD(kv map[string]any) bson.D {
  keys := make([]string, 0, len(kv))
  for key := range kv {
    keys = append(keys, key)
  }
  sort.Strings(keys)

  out := make(bson.D, 0, len(kv))

  for _, key := range keys {
    out = append(out, bson.E{
      Key:   key,
      Value: kv[key],
    })
  }

  return out
}
