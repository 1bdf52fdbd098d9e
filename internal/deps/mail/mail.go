package mail

import (
  "context"
  "errors"
  "fmt"
  "net/textproto"

  "github.com/go-playground/validator/v10"
  log "github.com/sirupsen/logrus"
  "github.com/ushakovn/pricewatch/internal/models"
  gomail "github.com/wneessen/go-mail"
)

const DefaultPort = 587

// Config leaves User empty for relays that accept mail without authentication.
type Config struct {
  Host      string `validate:"required"`
  Port      int    `validate:"gt=0"`
  User      string
  Password  string `validate:"required_with=User"`
  From      string `validate:"required,email"`
  TLSPolicy gomail.TLSPolicy
}

func (c *Config) Validate() error {
  return validator.New().Struct(c)
}

type Sender struct {
  config Config
}

func NewSender(config Config) (*Sender, error) {
  if err := config.Validate(); err != nil {
    return nil, fmt.Errorf("invalid config: %w", err)
  }
  return &Sender{config: config}, nil
}

// SendEmail dials a fresh SMTP session per message: go-mail clients are not safe for concurrent sends.
func (s *Sender) SendEmail(ctx context.Context, to, subject, body string) error {
  msg := gomail.NewMsg()

  if err := msg.From(s.config.From); err != nil {
    return fmt.Errorf("msg.From: %w", err)
  }
  if err := msg.To(to); err != nil {
    return fmt.Errorf("msg.To: %s: %w", err, models.ErrInvalidRecipient)
  }
  msg.Subject(subject)
  msg.SetBodyString(gomail.TypeTextPlain, body)

  opts := []gomail.Option{
    gomail.WithPort(s.config.Port),
    gomail.WithTLSPolicy(s.config.TLSPolicy),
  }
  if s.config.User != "" {
    opts = append(opts,
      gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
      gomail.WithUsername(s.config.User),
      gomail.WithPassword(s.config.Password),
    )
  }

  client, err := gomail.NewClient(s.config.Host, opts...)
  if err != nil {
    return fmt.Errorf("gomail.NewClient: %w", err)
  }

  if err = client.DialAndSendWithContext(ctx, msg); err != nil {
    return fmt.Errorf("client.DialAndSendWithContext: %w", classify(err))
  }

  log.
    WithField("email.to", to).
    Debug("email sent")

  return nil
}

// classify maps send failures onto delivery outcomes. Failures inside the session
// come as *gomail.SendError, a refused greeting as a bare SMTP reply.
func classify(err error) error {
  var sendErr *gomail.SendError
  if errors.As(err, &sendErr) {
    switch {
    case sendErr.IsTemp():
      return fmt.Errorf("%w: %w", err, models.ErrRateLimited)

    case sendErr.Reason == gomail.ErrSMTPRcptTo:
      return fmt.Errorf("%w: %w", err, models.ErrInvalidRecipient)

    default:
      return err
    }
  }

  var reply *textproto.Error
  if !errors.As(err, &reply) {
    return err
  }

  switch reply.Code {
  case 421, 450, 451, 452:
    return fmt.Errorf("smtp %d %s: %w", reply.Code, reply.Msg, models.ErrRateLimited)

  case 550, 551, 553:
    return fmt.Errorf("smtp %d %s: %w", reply.Code, reply.Msg, models.ErrInvalidRecipient)

  default:
    return err
  }
}
