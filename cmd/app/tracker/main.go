package main

import (
  "context"
  "encoding/json"
  "flag"
  "fmt"
  "os"

  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/internal/app/tracker"
  "github.com/ushakovn/pricewatch/internal/config"
  "github.com/ushakovn/pricewatch/internal/models"
  "github.com/ushakovn/pricewatch/internal/setup"
  "github.com/ushakovn/pricewatch/pkg/logger"
)

const usage = `usage: tracker <command> [flags]

commands:
  track    -url URL -target PRICE [-email ADDR] [-phone NUMBER] [-telegram CHAT_ID]
  list
  get      -id ID
  update   -id ID -target PRICE
  delete   -id ID
  similar  -url URL
  stats
  resolve  -code CODE`

func main() {
  config.Load()

  logger.InitWithFields(map[string]any{
    "app": "tracker",
  })

  if len(os.Args) < 2 {
    fmt.Fprintln(os.Stderr, usage)
    os.Exit(2)
  }
  command, args := os.Args[1], os.Args[2:]

  var (
    url      string
    id       string
    code     string
    email    string
    phone    string
    target   float64
    telegram int64
  )

  flags := flag.NewFlagSet(command, flag.ExitOnError)
  flags.StringVar(&url, "url", "", "product url")
  flags.StringVar(&id, "id", "", "tracking id")
  flags.StringVar(&code, "code", "", "short url code")
  flags.StringVar(&email, "email", "", "alert email address")
  flags.StringVar(&phone, "phone", "", "alert whatsapp phone number")
  flags.Float64Var(&target, "target", 0, "target price")
  flags.Int64Var(&telegram, "telegram", 0, "alert telegram chat id")

  if err := flags.Parse(args); err != nil {
    log.Fatalf("flags.Parse: %v", err)
  }

  ctx := context.Background()

  repo, closeRepo, err := setup.NewRepository(ctx)
  if err != nil {
    log.Fatalf("setup.NewRepository: %v", err)
  }
  defer closeRepo()

  trackerClient, err := setup.NewTracker(ctx, repo)
  if err != nil {
    log.Fatalf("setup.NewTracker: %v", err)
  }

  var out any

  switch command {
  case "track":
    out, err = trackerClient.Track(ctx, tracker.TrackParams{
      URL:         url,
      TargetPrice: target,
      Contacts: models.TrackingContacts{
        Email:          email,
        Phone:          phone,
        TelegramChatId: telegram,
      },
    })

  case "list":
    out, err = trackerClient.List(ctx)

  case "get":
    out, err = trackerClient.Get(ctx, id)

  case "update":
    out, err = trackerClient.UpdateTargetPrice(ctx, id, target)

  case "delete":
    err = trackerClient.Delete(ctx, id)
    out = map[string]string{"deleted": id}

  case "similar":
    out, err = trackerClient.Similar(ctx, url)

  case "stats":
    out, err = trackerClient.Stats(ctx)

  case "resolve":
    out, err = trackerClient.ResolveShortCode(ctx, code)

  default:
    fmt.Fprintln(os.Stderr, usage)
    os.Exit(2)
  }

  if err != nil {
    closeRepo()
    log.Fatalf("tracker %s: %v", command, err)
  }

  encoder := json.NewEncoder(os.Stdout)
  encoder.SetIndent("", "  ")

  if err = encoder.Encode(out); err != nil {
    log.Errorf("encoder.Encode: %v", err)
  }
}
