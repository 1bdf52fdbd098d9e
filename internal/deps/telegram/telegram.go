package telegram

import (
  "context"
  "errors"
  "fmt"

  tgbot "github.com/go-telegram/bot"
  tgmodels "github.com/go-telegram/bot/models"
  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/internal/models"
)

type Config struct {
  Token string
}

func NewBotClient(config Config) (*tgbot.Bot, error) {
  bot, err := tgbot.New(config.Token)
  if err != nil {
    return nil, fmt.Errorf("tgbot.New: %w", err)
  }
  log.Info("telegram bot client connection successfully")

  return bot, nil
}

// Client is the part of *tgbot.Bot used for alerts.
type Client interface {
  SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*tgmodels.Message, error)
}

type Sender struct {
  client Client
}

func NewSender(client Client) *Sender {
  return &Sender{client: client}
}

func (s *Sender) SendTelegram(ctx context.Context, chatID int64, text string) error {
  sent, err := s.client.SendMessage(ctx, &tgbot.SendMessageParams{
    ChatID:    chatID,
    Text:      text,
    ParseMode: tgmodels.ParseModeHTML,
  })
  if err != nil {
    return fmt.Errorf("s.client.SendMessage: %w", classify(err))
  }

  log.
    WithFields(log.Fields{
      "telegram.chat_id": chatID,
      "telegram.sent_id": sent.ID,
    }).
    Debug("telegram message sent")

  return nil
}

// classify maps Bot API failures onto delivery outcomes.
// A blocked bot or a missing chat cannot be fixed by a retry.
func classify(err error) error {
  switch {
  case tgbot.IsTooManyRequestsError(err):
    return fmt.Errorf("%w: %w", err, models.ErrRateLimited)

  case errors.Is(err, tgbot.ErrorForbidden), errors.Is(err, tgbot.ErrorBadRequest):
    return fmt.Errorf("%w: %w", err, models.ErrInvalidRecipient)

  default:
    return err
  }
}
