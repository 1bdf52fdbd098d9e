package config

import (
  "context"
  "os"
  "strings"
  "sync"
  "time"

  "github.com/joho/godotenv"
  log "github.com/sirupsen/logrus"
  "github.com/spf13/cast"
)

type Key string

const (
  Env           Key = "ENV"
  StorageDriver Key = "STORAGE_DRIVER"

  MongodbHost     Key = "MONGODB_HOST"
  MongodbPort     Key = "MONGODB_PORT"
  MongodbUser     Key = "MONGODB_USER"
  MongodbPassword Key = "MONGODB_PASSWORD"
  MongodbDatabase Key = "MONGODB_DATABASE"

  PostgresDSN Key = "POSTGRES_DSN"
  SqlitePath  Key = "SQLITE_PATH"

  SmtpHost     Key = "SMTP_HOST"
  SmtpPort     Key = "SMTP_PORT"
  SmtpUser     Key = "SMTP_USER"
  SmtpPassword Key = "SMTP_PASSWORD"
  SmtpFrom     Key = "SMTP_FROM"
  SmtpStartTLS Key = "SMTP_STARTTLS_OPTIONAL"

  TwilioSid            Key = "TWILIO_SID"
  TwilioAuthToken      Key = "TWILIO_AUTH_TOKEN"
  TwilioWhatsAppNumber Key = "TWILIO_WHATSAPP_NUMBER"

  TelegramToken Key = "TELEGRAM_TOKEN"

  BaseURL Key = "BASE_URL"

  MonitorInterval    Key = "MONITOR_INTERVAL"
  MonitorWorkers     Key = "MONITOR_WORKERS"
  MonitorItemTimeout Key = "MONITOR_ITEM_TIMEOUT"

  FetchTimeout   Key = "FETCH_TIMEOUT"
  FetchAttempts  Key = "FETCH_ATTEMPTS"
  FetchBaseDelay Key = "FETCH_BASE_DELAY"
)

const (
  DriverMongodb  = "mongodb"
  DriverPostgres = "postgres"
  DriverSqlite   = "sqlite"
)

var defaults = map[Key]string{
  Env:                "DEV",
  StorageDriver:      DriverMongodb,
  MongodbHost:        "localhost",
  MongodbPort:        "27017",
  MongodbDatabase:    "pricewatch",
  SqlitePath:         "pricewatch.db",
  SmtpPort:           "587",
  SmtpStartTLS:       "false",
  BaseURL:            "http://localhost:5000",
  MonitorInterval:    "1m",
  MonitorWorkers:     "5",
  MonitorItemTimeout: "45s",
  FetchTimeout:       "10s",
  FetchAttempts:      "3",
  FetchBaseDelay:     "2s",
}

var loadOnce sync.Once

// Load reads .env files into the process environment once. Variables already set win.
func Load(filenames ...string) {
  loadOnce.Do(func() {
    if err := godotenv.Load(filenames...); err != nil {
      log.Debugf("config: .env not loaded: %v", err)
    }
  })
}

type Value struct {
  key   Key
  raw   string
  isSet bool
}

// Get returns the environment value of the key, falling back to its default.
func Get(_ context.Context, key Key) Value {
  Load()

  if raw, ok := os.LookupEnv(string(key)); ok && strings.TrimSpace(raw) != "" {
    return Value{key: key, raw: strings.TrimSpace(raw), isSet: true}
  }
  return Value{key: key, raw: defaults[key]}
}

func (v Value) IsSet() bool {
  return v.isSet
}

func (v Value) String() string {
  return v.raw
}

func (v Value) Int() int {
  value, err := cast.ToIntE(v.raw)
  if err != nil {
    v.warn(err)
    return cast.ToInt(defaults[v.key])
  }
  return value
}

func (v Value) Bool() bool {
  value, err := cast.ToBoolE(v.raw)
  if err != nil {
    v.warn(err)
    return cast.ToBool(defaults[v.key])
  }
  return value
}

// Duration expects Go duration syntax ("90s", "1h"). A bare number is read as nanoseconds.
func (v Value) Duration() time.Duration {
  value, err := cast.ToDurationE(v.raw)
  if err != nil {
    v.warn(err)
    return cast.ToDuration(defaults[v.key])
  }
  return value
}

func (v Value) warn(err error) {
  log.
    WithField("config.key", v.key).
    Warnf("config value malformed: default used: %v", err)
}
