package telegram

import (
  "context"
  "errors"
  "fmt"
  "strings"

  telegram "github.com/go-telegram/bot"
  tgmodels "github.com/go-telegram/bot/models"
  tgreply "github.com/go-telegram/ui/keyboard/reply"
  "github.com/samber/lo"
  "github.com/spf13/cast"
  "github.com/ushakovn/pricewatch/internal/app/tracker"
  "github.com/ushakovn/pricewatch/internal/models"
)

var errUsage = errors.New("invalid command arguments")

func findChatIdInUpdate(update *tgmodels.Update) (int64, bool) {
  if update != nil && update.Message != nil && update.Message.Chat.ID != 0 {
    return update.Message.Chat.ID, true
  }
  return 0, false
}

func newReplyKeyboard(prefix string) *tgreply.ReplyKeyboard {
  return tgreply.New(
    tgreply.WithPrefix(prefix),
    tgreply.IsOneTimeKeyboard(),
    tgreply.ResizableKeyboard(),
  )
}

type sendMessageParams struct {
  ChatId int64
  Text   string
  Reply  tgmodels.ReplyMarkup
}

func (b *Transport) sendMessage(ctx context.Context, params sendMessageParams) error {
  _, err := b.deps.Telegram.SendMessage(ctx, &telegram.SendMessageParams{
    ChatID:      params.ChatId,
    Text:        params.Text,
    ParseMode:   tgmodels.ParseModeHTML,
    ReplyMarkup: params.Reply,
    LinkPreviewOptions: &tgmodels.LinkPreviewOptions{
      IsDisabled: lo.ToPtr(true),
    },
  })
  if err != nil {
    return fmt.Errorf("b.deps.Telegram.SendMessage: %w", err)
  }

  return nil
}

// splitCommand separates "/command@bot arg1 arg2" into the bare command and its arguments.
func splitCommand(text string) (string, []string) {
  fields := strings.Fields(text)
  if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
    return "", nil
  }

  command, _, _ := strings.Cut(fields[0], "@")

  return strings.ToLower(command), fields[1:]
}

// parseTrackArgs reads "<url> <target price> [email]".
func parseTrackArgs(chatId int64, args []string) (tracker.TrackParams, error) {
  if len(args) < 2 || len(args) > 3 {
    return tracker.TrackParams{}, errUsage
  }

  target, err := parsePrice(args[1])
  if err != nil {
    return tracker.TrackParams{}, err
  }

  params := tracker.TrackParams{
    URL:         args[0],
    TargetPrice: target,
    Contacts: models.TrackingContacts{
      TelegramChatId: chatId,
    },
  }
  if len(args) == 3 {
    params.Contacts.Email = args[2]
  }

  return params, nil
}

// parseTargetArgs reads "<id> <target price>".
func parseTargetArgs(args []string) (string, float64, error) {
  if len(args) != 2 {
    return "", 0, errUsage
  }

  target, err := parsePrice(args[1])
  if err != nil {
    return "", 0, err
  }

  return args[0], target, nil
}

func parseSingleArg(args []string) (string, error) {
  if len(args) != 1 {
    return "", errUsage
  }
  return args[0], nil
}

func parsePrice(value string) (float64, error) {
  value = strings.TrimPrefix(value, "$")
  value = strings.ReplaceAll(value, ",", "")

  price, err := cast.ToFloat64E(value)
  if err != nil {
    return 0, fmt.Errorf("%w: %v", errUsage, err)
  }

  return price, nil
}

func ownedTrackings(trackings []models.Tracking, chatId int64) []models.Tracking {
  return lo.Filter(trackings, func(tracking models.Tracking, _ int) bool {
    return tracking.Contacts.TelegramChatId == chatId
  })
}

// findOwnedTracking hides trackings of other chats behind the not found error.
func (b *Transport) findOwnedTracking(ctx context.Context, chatId int64, id string) (*models.Tracking, error) {
  tracking, err := b.deps.Tracker.Get(ctx, id)
  if err != nil {
    return nil, fmt.Errorf("b.deps.Tracker.Get: %w", err)
  }
  if tracking.Contacts.TelegramChatId != chatId {
    return nil, models.ErrTrackingNotFound
  }
  return tracking, nil
}

// failureText turns expected errors into a user reply. Unexpected errors get a generic text.
func failureText(err error) (string, bool) {
  switch {
  case errors.Is(err, errUsage):
    return "Unrecognized arguments. Send /help to see the commands 💡", true

  case errors.Is(err, tracker.ErrInvalidURL):
    return "This does not look like a product link 🔗", true

  case errors.Is(err, tracker.ErrInvalidTargetPrice):
    return "Target price must be greater than zero 💲", true

  case errors.Is(err, tracker.ErrInvalidContacts):
    return "The email address is not valid 📧", true

  case errors.Is(err, models.ErrTrackingNotFound):
    return "Tracking not found. Send /list to see your trackings 📋", true
  }

  return "Something went wrong. Please try again later ⚠️", false
}
