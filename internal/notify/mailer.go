// Package notify renders and delivers ride receipts by email.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"frota/internal/logging"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message is one outgoing HTML email.
type Message struct {
	To       []string
	Subject  string
	HTMLBody string
}

// Mailer delivers messages. Implementations must honor ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSettings configures SMTPMailer.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPMailer sends through an SMTP relay, one connection per message.
type SMTPMailer struct {
	settings SMTPSettings
}

func NewSMTPMailer(settings SMTPSettings) *SMTPMailer {
	return &SMTPMailer{settings: settings}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm := mail.NewMsg()
	if err := mm.From(m.settings.From); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.settings.From, err)
	}
	if err := mm.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipients: %w", err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)

	opts := []mail.Option{
		mail.WithPort(m.settings.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.settings.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.settings.Timeout))
	}
	if m.settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.settings.Username),
			mail.WithPassword(m.settings.Password),
		)
	}

	client, err := mail.NewClient(m.settings.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer only logs messages. Used when SMTP is disabled.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	logging.Info("email delivery disabled, message dropped",
		zap.String("to", strings.Join(msg.To, ",")),
		zap.String("subject", msg.Subject),
	)
	return nil
}
