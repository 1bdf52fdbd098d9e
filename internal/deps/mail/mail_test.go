package mail

import (
  "context"
  "errors"
  "net"
  "net/textproto"
  "strings"
  "testing"

  "github.com/ushakovn/pricewatch/internal/models"
  gomail "github.com/wneessen/go-mail"
)

type smtpReplies struct {
  Greeting string
  Rcpt     string
  Data     string
}

// newSMTPServer answers every session with the given replies and reports accepted message bodies.
func newSMTPServer(t *testing.T, replies smtpReplies) (int, <-chan string) {
  t.Helper()

  if replies.Greeting == "" {
    replies.Greeting = "220 localhost ESMTP"
  }
  if replies.Rcpt == "" {
    replies.Rcpt = "250 2.1.5 ok"
  }
  if replies.Data == "" {
    replies.Data = "250 2.0.0 queued"
  }

  listener, err := net.Listen("tcp", "127.0.0.1:0")
  if err != nil {
    t.Fatalf("net.Listen: %v", err)
  }
  t.Cleanup(func() { _ = listener.Close() })

  received := make(chan string, 1)

  go func() {
    for {
      conn, err := listener.Accept()
      if err != nil {
        return
      }
      go serveSMTP(conn, replies, received)
    }
  }()

  return listener.Addr().(*net.TCPAddr).Port, received
}

func serveSMTP(conn net.Conn, replies smtpReplies, received chan<- string) {
  text := textproto.NewConn(conn)
  defer text.Close()

  if err := text.PrintfLine("%s", replies.Greeting); err != nil {
    return
  }
  if !strings.HasPrefix(replies.Greeting, "2") {
    return
  }

  for {
    line, err := text.ReadLine()
    if err != nil {
      return
    }

    verb, _, _ := strings.Cut(strings.ToUpper(line), " ")

    switch verb {
    case "EHLO", "HELO":
      err = text.PrintfLine("250 localhost")

    case "RCPT":
      err = text.PrintfLine("%s", replies.Rcpt)

    case "DATA":
      if err = text.PrintfLine("354 go ahead"); err != nil {
        return
      }
      body, readErr := text.ReadDotBytes()
      if readErr != nil {
        return
      }
      if strings.HasPrefix(replies.Data, "2") {
        select {
        case received <- string(body):
        default:
        }
      }
      err = text.PrintfLine("%s", replies.Data)

    case "QUIT":
      _ = text.PrintfLine("221 bye")
      return

    default:
      err = text.PrintfLine("250 ok")
    }

    if err != nil {
      return
    }
  }
}

func newTestSender(t *testing.T, port int) *Sender {
  t.Helper()

  sender, err := NewSender(Config{
    Host:      "127.0.0.1",
    Port:      port,
    From:      "alerts@example.com",
    TLSPolicy: gomail.NoTLS,
  })
  if err != nil {
    t.Fatalf("NewSender: %v", err)
  }
  return sender
}

func TestSendEmailDelivers(t *testing.T) {
  port, received := newSMTPServer(t, smtpReplies{})
  sender := newTestSender(t, port)

  err := sender.SendEmail(context.Background(), "buyer@example.com", "Price Drop Alert!", "Kettle is now $9.00")
  if err != nil {
    t.Fatalf("SendEmail: %v", err)
  }

  select {
  case body := <-received:
    if !strings.Contains(body, "Subject: Price Drop Alert!") {
      t.Errorf("message misses subject: %q", body)
    }
    if !strings.Contains(body, "Kettle is now $9.00") {
      t.Errorf("message misses body: %q", body)
    }
  default:
    t.Error("server received no message")
  }
}

func TestSendEmailClassifiesServerReplies(t *testing.T) {
  cases := []struct {
    name    string
    replies smtpReplies
    want    error
  }{
    {
      name:    "mailbox unavailable",
      replies: smtpReplies{Rcpt: "550 5.1.1 no such user"},
      want:    models.ErrInvalidRecipient,
    },
    {
      name:    "recipient deferred",
      replies: smtpReplies{Rcpt: "452 4.5.3 too many recipients"},
      want:    models.ErrRateLimited,
    },
    {
      name:    "service busy",
      replies: smtpReplies{Greeting: "421 4.7.0 try again later"},
      want:    models.ErrRateLimited,
    },
    {
      name:    "message rejected",
      replies: smtpReplies{Data: "554 5.7.1 message refused"},
      want:    nil,
    },
  }

  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      port, _ := newSMTPServer(t, tc.replies)
      sender := newTestSender(t, port)

      err := sender.SendEmail(context.Background(), "buyer@example.com", "subject", "body")
      if err == nil {
        t.Fatal("SendEmail: expected error")
      }

      if tc.want == nil {
        if errors.Is(err, models.ErrRateLimited) || errors.Is(err, models.ErrInvalidRecipient) {
          t.Errorf("SendEmail = %v, want unexpected failure", err)
        }
        return
      }
      if !errors.Is(err, tc.want) {
        t.Errorf("SendEmail = %v, want %v", err, tc.want)
      }
      if got := models.ClassifyDelivery(err); got.IsRetryable() != errors.Is(tc.want, models.ErrRateLimited) {
        t.Errorf("ClassifyDelivery(%v) = %v", err, got)
      }
    })
  }
}

func TestSendEmailRejectsInvalidAddress(t *testing.T) {
  sender, err := NewSender(Config{
    Host:     "smtp.example.com",
    Port:     DefaultPort,
    User:     "alerts",
    Password: "secret",
    From:     "alerts@example.com",
  })
  if err != nil {
    t.Fatalf("NewSender: %v", err)
  }

  err = sender.SendEmail(context.Background(), "not an address", "subject", "body")
  if !errors.Is(err, models.ErrInvalidRecipient) {
    t.Errorf("SendEmail: got %v, want ErrInvalidRecipient", err)
  }
}

func TestNewSenderValidation(t *testing.T) {
  if _, err := NewSender(Config{Host: "smtp.example.com", Port: DefaultPort}); err == nil {
    t.Error("expected config validation error")
  }
  if _, err := NewSender(Config{Host: "smtp.example.com", Port: DefaultPort, User: "alerts", From: "alerts@example.com"}); err == nil {
    t.Error("expected error for user without password")
  }
}
