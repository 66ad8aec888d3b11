package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/shanehull/finbrief/internal/config"
	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/logging"
)

const dialTimeout = 10 * time.Second

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Server string
	Port   int
	User   string
	Pass   string
	From   string
}

// SMTPFromConfig extracts the SMTP settings from the email section.
func SMTPFromConfig(e config.EmailConfig) SMTPConfig {
	from := e.FromEmail
	if from == "" {
		from = e.SMTPUser
	}
	return SMTPConfig{
		Server: e.SMTPServer,
		Port:   e.SMTPPort,
		User:   e.SMTPUser,
		Pass:   e.SMTPPass,
		From:   from,
	}
}

func (c SMTPConfig) ready() bool {
	return c.Server != "" && c.User != "" && c.Pass != ""
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender delivers messages via SMTP.
type EmailSender struct {
	cfg    SMTPConfig
	dial   func(SMTPConfig) dialer
	logger *slog.Logger
}

type SenderOption func(*EmailSender)

func WithSenderLogger(l *slog.Logger) SenderOption {
	return func(s *EmailSender) { s.logger = logging.OrDiscard(l) }
}

func withDialer(fn func(SMTPConfig) dialer) SenderOption {
	return func(s *EmailSender) { s.dial = fn }
}

// NewEmailSender creates a sender with the given SMTP configuration.
func NewEmailSender(cfg SMTPConfig, opts ...SenderOption) *EmailSender {
	s := &EmailSender{
		cfg:    cfg,
		dial:   newGomailDialer,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newGomailDialer(cfg SMTPConfig) dialer {
	d := gomail.NewDialer(cfg.Server, cfg.Port, cfg.User, cfg.Pass)
	d.Timeout = dialTimeout
	return d
}

// Send delivers an email with HTML body and plain text fallback to every
// recipient in one message. Missing credentials or recipients are reported
// as a configuration error.
func (s *EmailSender) Send(ctx context.Context, msg *RenderedMessage, to []string) error {
	if !s.cfg.ready() {
		return faults.Wrap(faults.ErrConfiguration, "email", "send", "SMTP credentials not set", nil)
	}
	if len(to) == 0 {
		return faults.Wrap(faults.ErrConfiguration, "email", "send", "no recipients", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", msg.Subject)

	if msg.HTML != "" && msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else if msg.HTML != "" {
		m.SetBody("text/html", msg.HTML)
	} else {
		m.SetBody("text/plain", msg.Text)
	}

	if err := s.dial(s.cfg).DialAndSend(m); err != nil {
		s.logger.Error("email send failed", "to", strings.Join(to, ","), "subject", msg.Subject, "error", err)
		return fmt.Errorf("send email %q: %w", msg.Subject, err)
	}

	s.logger.Info("email sent", "subject", msg.Subject, "recipients", len(to))
	return nil
}
