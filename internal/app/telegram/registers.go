package telegram

import (
  "context"

  telegram "github.com/go-telegram/bot"
  tgmodels "github.com/go-telegram/bot/models"
)

const (
  commandStart   = "/start"
  commandHelp    = "/help"
  commandTrack   = "/track"
  commandList    = "/list"
  commandTarget  = "/target"
  commandDelete  = "/delete"
  commandSimilar = "/similar"
  commandStats   = "/stats"
)

func (b *Transport) registerHandlers(ctx context.Context) {
  b.registerCommandHandler(ctx, registerCommandHandlerParams{
    Command: commandStart,
    Handler: b.handleStartMenu,
  })

  b.registerCommandHandler(ctx, registerCommandHandlerParams{
    Command: commandHelp,
    Handler: b.handleStartMenu,
  })

  b.registerCommandHandler(ctx, registerCommandHandlerParams{
    Command: commandList,
    Handler: b.handleTrackingList,
  })

  b.registerCommandHandler(ctx, registerCommandHandlerParams{
    Command: commandStats,
    Handler: b.handleTrackingStats,
  })

  b.registerArgsCommandHandler(ctx, registerCommandHandlerParams{
    Command: commandTrack,
    Handler: b.handleTrackingInsert,
  })

  b.registerArgsCommandHandler(ctx, registerCommandHandlerParams{
    Command: commandTarget,
    Handler: b.handleTrackingTarget,
  })

  b.registerArgsCommandHandler(ctx, registerCommandHandlerParams{
    Command: commandDelete,
    Handler: b.handleTrackingDelete,
  })

  b.registerArgsCommandHandler(ctx, registerCommandHandlerParams{
    Command: commandSimilar,
    Handler: b.handleSimilarSearch,
  })
}

type registerCommandHandlerParams struct {
  Command string
  Handler func(ctx context.Context, bot *telegram.Bot, update *tgmodels.Update)
}

func (b *Transport) registerCommandHandler(_ context.Context, params registerCommandHandlerParams) {
  b.deps.Telegram.RegisterHandler(
    telegram.HandlerTypeMessageText, params.Command,
    telegram.MatchTypeExact, params.Handler,
  )
}

// registerArgsCommandHandler matches "/command" followed by space separated arguments.
func (b *Transport) registerArgsCommandHandler(_ context.Context, params registerCommandHandlerParams) {
  b.deps.Telegram.RegisterHandlerMatchFunc(
    func(update *tgmodels.Update) bool {
      if update == nil || update.Message == nil {
        return false
      }
      command, _ := splitCommand(update.Message.Text)
      return command == params.Command
    },
    params.Handler,
  )
}
