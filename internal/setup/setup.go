// Package setup builds the application dependencies from the process configuration.
package setup

import (
  "context"
  "fmt"
  "net/http"

  "github.com/go-resty/resty/v2"
  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/internal/app/notifier"
  "github.com/ushakovn/pricewatch/internal/app/tracker"
  "github.com/ushakovn/pricewatch/internal/config"
  "github.com/ushakovn/pricewatch/internal/deps/extractor"
  "github.com/ushakovn/pricewatch/internal/deps/fetcher"
  "github.com/ushakovn/pricewatch/internal/deps/mail"
  "github.com/ushakovn/pricewatch/internal/deps/similar"
  "github.com/ushakovn/pricewatch/internal/deps/storage/mongodb"
  "github.com/ushakovn/pricewatch/internal/deps/storage/postgres"
  "github.com/ushakovn/pricewatch/internal/deps/storage/sqlite"
  "github.com/ushakovn/pricewatch/internal/deps/telegram"
  "github.com/ushakovn/pricewatch/internal/deps/twilio"
  "github.com/ushakovn/pricewatch/internal/models"
  gomail "github.com/wneessen/go-mail"
)

type CloseFunc func()

// NewRepository opens the tracking storage selected by STORAGE_DRIVER.
func NewRepository(ctx context.Context) (models.TrackingRepository, CloseFunc, error) {
  driver := config.Get(ctx, config.StorageDriver).String()

  log.
    WithField("storage.driver", driver).
    Info("tracking storage connecting")

  switch driver {
  case config.DriverMongodb:
    mongoConfig := mongodb.Config{
      Host:     config.Get(ctx, config.MongodbHost).String(),
      Port:     config.Get(ctx, config.MongodbPort).String(),
      Database: config.Get(ctx, config.MongodbDatabase).String(),
    }
    if user := config.Get(ctx, config.MongodbUser); user.IsSet() {
      mongoConfig.Authentication = &mongodb.Authentication{
        User:     user.String(),
        Password: config.Get(ctx, config.MongodbPassword).String(),
      }
    }

    client, err := mongodb.NewClient(ctx, mongoConfig, mongodb.Dependencies{
      Client: http.DefaultClient,
    })
    if err != nil {
      return nil, nil, fmt.Errorf("mongodb.NewClient: %w", err)
    }
    closeFunc := func() {
      if err := client.Close(context.Background()); err != nil {
        log.Errorf("mongodb client close failed: %v", err)
      }
    }

    repo, err := mongodb.NewTrackings(ctx, client)
    if err != nil {
      closeFunc()
      return nil, nil, fmt.Errorf("mongodb.NewTrackings: %w", err)
    }
    return repo, closeFunc, nil

  case config.DriverPostgres:
    client, err := postgres.NewClient(ctx, postgres.Config{
      DSN: config.Get(ctx, config.PostgresDSN).String(),
    })
    if err != nil {
      return nil, nil, fmt.Errorf("postgres.NewClient: %w", err)
    }

    repo, err := postgres.NewTrackings(ctx, client)
    if err != nil {
      client.Close()
      return nil, nil, fmt.Errorf("postgres.NewTrackings: %w", err)
    }
    return repo, client.Close, nil

  case config.DriverSqlite:
    repo, err := sqlite.NewTrackings(ctx, sqlite.Config{
      Path: config.Get(ctx, config.SqlitePath).String(),
    })
    if err != nil {
      return nil, nil, fmt.Errorf("sqlite.NewTrackings: %w", err)
    }
    closeFunc := func() {
      if err := repo.Close(); err != nil {
        log.Errorf("sqlite close failed: %v", err)
      }
    }
    return repo, closeFunc, nil

  default:
    return nil, nil, fmt.Errorf("unsupported storage driver: %q", driver)
  }
}

func NewExtractor(ctx context.Context) (*extractor.Extractor, error) {
  fetchConfig := fetcher.DefaultConfig()
  fetchConfig.Timeout = config.Get(ctx, config.FetchTimeout).Duration()
  fetchConfig.Attempts = uint64(config.Get(ctx, config.FetchAttempts).Int())
  fetchConfig.BaseDelay = config.Get(ctx, config.FetchBaseDelay).Duration()

  fetchClient, err := fetcher.NewClient(fetchConfig, fetcher.Dependencies{
    Client: resty.NewWithClient(http.DefaultClient),
  })
  if err != nil {
    return nil, fmt.Errorf("fetcher.NewClient: %w", err)
  }

  registry := extractor.DefaultRegistry()

  ext, err := extractor.NewExtractor(extractor.Dependencies{
    Fetcher:  fetchClient,
    Registry: registry,
  })
  if err != nil {
    return nil, fmt.Errorf("extractor.NewExtractor: %w", err)
  }

  log.
    WithField("extractor.sites", registry.KnownSites().ToSlice()).
    Info("extraction rules loaded")

  return ext, nil
}

func NewSimilarFinder(ctx context.Context) (*similar.Finder, error) {
  finderConfig := similar.DefaultConfig()
  finderConfig.Timeout = config.Get(ctx, config.FetchTimeout).Duration()

  finder, err := similar.NewFinder(finderConfig, similar.Dependencies{
    Registry: extractor.DefaultRegistry(),
  })
  if err != nil {
    return nil, fmt.Errorf("similar.NewFinder: %w", err)
  }
  return finder, nil
}

// NewTracker builds the tracking service on top of an opened repository.
func NewTracker(ctx context.Context, repo models.TrackingRepository) (*tracker.Tracker, error) {
  ext, err := NewExtractor(ctx)
  if err != nil {
    return nil, fmt.Errorf("NewExtractor: %w", err)
  }

  finder, err := NewSimilarFinder(ctx)
  if err != nil {
    return nil, fmt.Errorf("NewSimilarFinder: %w", err)
  }

  trackerClient, err := tracker.NewTracker(tracker.Config{
    BaseURL: config.Get(ctx, config.BaseURL).String(),
  }, tracker.Dependencies{
    Repository: repo,
    Extractor:  ext,
    Similar:    finder,
  })
  if err != nil {
    return nil, fmt.Errorf("tracker.NewTracker: %w", err)
  }

  return trackerClient, nil
}

// NewNotifier wires every channel whose credentials are configured.
func NewNotifier(ctx context.Context) (*notifier.Notifier, error) {
  var deps notifier.Dependencies

  if host := config.Get(ctx, config.SmtpHost); host.IsSet() {
    from := config.Get(ctx, config.SmtpFrom)
    if !from.IsSet() {
      from = config.Get(ctx, config.SmtpUser)
    }

    tlsPolicy := gomail.TLSMandatory
    if config.Get(ctx, config.SmtpStartTLS).Bool() {
      tlsPolicy = gomail.TLSOpportunistic
    }

    sender, err := mail.NewSender(mail.Config{
      Host:      host.String(),
      Port:      config.Get(ctx, config.SmtpPort).Int(),
      User:      config.Get(ctx, config.SmtpUser).String(),
      Password:  config.Get(ctx, config.SmtpPassword).String(),
      From:      from.String(),
      TLSPolicy: tlsPolicy,
    })
    if err != nil {
      return nil, fmt.Errorf("mail.NewSender: %w", err)
    }
    deps.Email = sender
  }

  if sid := config.Get(ctx, config.TwilioSid); sid.IsSet() {
    client, err := twilio.NewClient(twilio.Config{
      AccountSid: sid.String(),
      AuthToken:  config.Get(ctx, config.TwilioAuthToken).String(),
      From:       config.Get(ctx, config.TwilioWhatsAppNumber).String(),
      BaseURL:    twilio.DefaultBaseURL,
    }, twilio.Dependencies{
      Client: resty.NewWithClient(http.DefaultClient),
    })
    if err != nil {
      return nil, fmt.Errorf("twilio.NewClient: %w", err)
    }
    deps.Message = client
  }

  if token := config.Get(ctx, config.TelegramToken); token.IsSet() {
    bot, err := telegram.NewBotClient(telegram.Config{Token: token.String()})
    if err != nil {
      return nil, fmt.Errorf("telegram.NewBotClient: %w", err)
    }
    deps.Telegram = telegram.NewSender(bot)
  }

  log.
    WithFields(log.Fields{
      "notification.email":    deps.Email != nil,
      "notification.whatsapp": deps.Message != nil,
      "notification.telegram": deps.Telegram != nil,
    }).
    Info("notification channels configured")

  return notifier.NewNotifier(deps), nil
}
