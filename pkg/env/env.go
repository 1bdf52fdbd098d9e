package env

import (
  "os"
  "strings"
)

type Env = string

const (
  DEV  Env = "DEV"
  PROD Env = "PROD"
)

func AppEnv() Env {
  if value := strings.ToUpper(strings.TrimSpace(os.Getenv("ENV"))); value == PROD {
    return PROD
  }
  return DEV
}
