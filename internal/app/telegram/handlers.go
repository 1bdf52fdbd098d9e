package telegram

import (
  "context"
  "fmt"
  "html"
  "strings"

  telegram "github.com/go-telegram/bot"
  tgmodels "github.com/go-telegram/bot/models"
  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/internal/message"
  "github.com/ushakovn/pricewatch/internal/models"
  "github.com/ushakovn/pricewatch/pkg/money"
)

const startText = `<b>Bot watches product prices for you 💬</b>

You get a message once the price drops to your target.

<b>Commands:</b>
/track URL PRICE [EMAIL] - start tracking a product
/list - your trackings
/target ID PRICE - change the target price
/delete ID - stop tracking
/similar URL - find similar products
/stats - your savings summary`

const (
  buttonList  = "My trackings 📋"
  buttonStats = "Statistics 📊"
)

func (b *Transport) handleStartMenu(ctx context.Context, bot *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := findChatIdInUpdate(update)
  if !ok {
    log.
      WithField("update.message", update.Message).
      WithField("command", commandStart).
      Warn("chat_id not found")

    return
  }

  reply := newReplyKeyboard("start").
    Row().Button(buttonList, bot, telegram.MatchTypeExact, b.handleTrackingList).
    Row().Button(buttonStats, bot, telegram.MatchTypeExact, b.handleTrackingStats)

  err := b.sendMessage(ctx, sendMessageParams{
    ChatId: chatId,
    Text:   startText,
    Reply:  reply,
  })
  if err != nil {
    log.
      WithField("chat_id", chatId).
      WithField("command", commandStart).
      Errorf("b.sendMessage: %v", err)
  }
}

func (b *Transport) handleTrackingInsert(ctx context.Context, _ *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := findChatIdInUpdate(update)
  if !ok {
    return
  }
  _, args := splitCommand(update.Message.Text)

  params, err := parseTrackArgs(chatId, args)
  if err != nil {
    b.replyFailure(ctx, chatId, commandTrack, err)
    return
  }

  tracking, err := b.deps.Tracker.Track(ctx, params)
  if err != nil {
    b.replyFailure(ctx, chatId, commandTrack, fmt.Errorf("b.deps.Tracker.Track: %w", err))
    return
  }

  text := "Tracking added 📨\n\n" + message.Do().SetTrackingPtr(tracking).BuildTracking()

  if tracking.CurrentPrice <= 0 {
    text += "\n\nThe price could not be read yet. It will be checked again shortly ⏳"
  }

  b.reply(ctx, chatId, commandTrack, text)
}

func (b *Transport) handleTrackingList(ctx context.Context, _ *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := findChatIdInUpdate(update)
  if !ok {
    return
  }

  trackings, err := b.deps.Tracker.List(ctx)
  if err != nil {
    b.replyFailure(ctx, chatId, commandList, fmt.Errorf("b.deps.Tracker.List: %w", err))
    return
  }
  trackings = ownedTrackings(trackings, chatId)

  if len(trackings) == 0 {
    b.reply(ctx, chatId, commandList, "You have no trackings yet. Send /track URL PRICE to add one 📨")
    return
  }

  cards := make([]string, 0, len(trackings))
  for _, tracking := range trackings {
    cards = append(cards, message.Do().SetTracking(tracking).BuildTracking())
  }

  b.reply(ctx, chatId, commandList, strings.Join(cards, "\n\n"))
}

func (b *Transport) handleTrackingTarget(ctx context.Context, _ *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := findChatIdInUpdate(update)
  if !ok {
    return
  }
  _, args := splitCommand(update.Message.Text)

  id, target, err := parseTargetArgs(args)
  if err != nil {
    b.replyFailure(ctx, chatId, commandTarget, err)
    return
  }

  if _, err = b.findOwnedTracking(ctx, chatId, id); err != nil {
    b.replyFailure(ctx, chatId, commandTarget, err)
    return
  }

  tracking, err := b.deps.Tracker.UpdateTargetPrice(ctx, id, target)
  if err != nil {
    b.replyFailure(ctx, chatId, commandTarget, fmt.Errorf("b.deps.Tracker.UpdateTargetPrice: %w", err))
    return
  }

  b.reply(ctx, chatId, commandTarget, "Target price updated 💲\n\n"+message.Do().SetTrackingPtr(tracking).BuildTracking())
}

func (b *Transport) handleTrackingDelete(ctx context.Context, _ *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := findChatIdInUpdate(update)
  if !ok {
    return
  }
  _, args := splitCommand(update.Message.Text)

  id, err := parseSingleArg(args)
  if err != nil {
    b.replyFailure(ctx, chatId, commandDelete, err)
    return
  }

  if _, err = b.findOwnedTracking(ctx, chatId, id); err != nil {
    b.replyFailure(ctx, chatId, commandDelete, err)
    return
  }

  if err = b.deps.Tracker.Delete(ctx, id); err != nil {
    b.replyFailure(ctx, chatId, commandDelete, fmt.Errorf("b.deps.Tracker.Delete: %w", err))
    return
  }

  b.reply(ctx, chatId, commandDelete, "Tracking deleted 🗑")
}

func (b *Transport) handleSimilarSearch(ctx context.Context, _ *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := findChatIdInUpdate(update)
  if !ok {
    return
  }
  _, args := splitCommand(update.Message.Text)

  url, err := parseSingleArg(args)
  if err != nil {
    b.replyFailure(ctx, chatId, commandSimilar, err)
    return
  }

  products, err := b.deps.Tracker.Similar(ctx, url)
  if err != nil {
    b.replyFailure(ctx, chatId, commandSimilar, fmt.Errorf("b.deps.Tracker.Similar: %w", err))
    return
  }

  b.reply(ctx, chatId, commandSimilar, similarText(products))
}

func (b *Transport) handleTrackingStats(ctx context.Context, _ *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := findChatIdInUpdate(update)
  if !ok {
    return
  }

  trackings, err := b.deps.Tracker.List(ctx)
  if err != nil {
    b.replyFailure(ctx, chatId, commandStats, fmt.Errorf("b.deps.Tracker.List: %w", err))
    return
  }

  stats := models.NewTrackingStats(ownedTrackings(trackings, chatId))

  b.reply(ctx, chatId, commandStats, statsText(stats))
}

func similarText(products []models.Product) string {
  if len(products) == 0 {
    return "No similar products found 🔍"
  }

  var text strings.Builder
  text.WriteString("<b>Similar products 🔍</b>")

  for i, product := range products {
    fmt.Fprintf(&text, "\n\n%d. %s\n%s", i+1, html.EscapeString(product.Name), money.String(product.Price))

    if product.URL != "" {
      fmt.Fprintf(&text, "\n%s", html.EscapeString(product.URL))
    }
  }

  return text.String()
}

func statsText(stats models.TrackingStats) string {
  return fmt.Sprintf(`<b>Your statistics 📊</b>
Tracked products: %d
Potential savings: %s
Close to target: %d
Average discount: %.1f%%`,
    stats.TotalProducts,
    money.String(stats.PotentialSavings),
    stats.NearTarget,
    stats.AvgDiscount,
  )
}

func (b *Transport) reply(ctx context.Context, chatId int64, command, text string) {
  err := b.sendMessage(ctx, sendMessageParams{
    ChatId: chatId,
    Text:   text,
  })
  if err != nil {
    log.
      WithField("chat_id", chatId).
      WithField("command", command).
      Errorf("b.sendMessage: %v", err)
  }
}

func (b *Transport) replyFailure(ctx context.Context, chatId int64, command string, err error) {
  text, expected := failureText(err)

  entry := log.
    WithField("chat_id", chatId).
    WithField("command", command)

  if expected {
    entry.Warnf("command rejected: %v", err)
  } else {
    entry.Errorf("command failed: %v", err)
  }

  b.reply(ctx, chatId, command, text)
}
