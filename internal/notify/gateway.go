// Package notify dispatches transactional email for booking lifecycle events.
// A Gateway makes exactly one delivery attempt per call and reports pass/fail;
// it never retries. Gateways are constructed with their configuration up
// front and do not read process state at send time.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/pkordes/rentaway/internal/domain"
)

// Gateway sends a single HTML email. Any failure is reported as an error
// wrapping domain.ErrNotification; callers do not distinguish causes further.
type Gateway interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds everything SMTPGateway needs to reach the mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

// SMTPGateway delivers mail through an SMTP relay using go-mail.
type SMTPGateway struct {
	client   *mail.Client
	from     string
	fromName string
}

// NewSMTPGateway builds a gateway for cfg. It does not connect; each Send
// dials, delivers, and closes.
func NewSMTPGateway(cfg SMTPConfig) (*SMTPGateway, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("notify.NewSMTPGateway: host and from address are required")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify.NewSMTPGateway: %w", err)
	}
	return &SMTPGateway{client: client, from: cfg.From, fromName: cfg.FromName}, nil
}

// Send builds the message and makes one delivery attempt.
func (g *SMTPGateway) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := g.message(to, subject, htmlBody)
	if err != nil {
		return fmt.Errorf("notify.SMTPGateway.Send: %w", errors.Join(domain.ErrNotification, err))
	}
	if err := g.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify.SMTPGateway.Send: %w", errors.Join(domain.ErrNotification, err))
	}
	return nil
}

func (g *SMTPGateway) message(to, subject, htmlBody string) (*mail.Msg, error) {
	if strings.TrimSpace(to) == "" {
		return nil, errors.New("recipient address is empty")
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(g.fromName, g.from); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	return msg, nil
}

// LogGateway writes messages to the logger instead of sending them.
// It is used when no SMTP host is configured, e.g. in local development.
type LogGateway struct {
	log *slog.Logger
}

// NewLogGateway returns a gateway that logs each message at INFO.
func NewLogGateway(log *slog.Logger) *LogGateway {
	return &LogGateway{log: log}
}

// Send logs the message and reports success, unless ctx is already done.
func (g *LogGateway) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("notify.LogGateway.Send: %w", errors.Join(domain.ErrNotification, err))
	}
	g.log.InfoContext(ctx, "email not sent (smtp disabled)",
		"to", to,
		"subject", subject,
		"body_bytes", len(htmlBody),
	)
	return nil
}
