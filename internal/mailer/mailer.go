// AngelaMos | 2026
// mailer.go

package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/wemanage-app/backend/internal/config"
)

// Mailer sends transactional email over SMTP. The only caller today is
// the password-reset flow; delivery failures must surface to it so the
// issued token can be revoked.
type Mailer struct {
	client *mail.Client
	from   string
}

func New(cfg config.EmailConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
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
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	return &Mailer{
		client: client,
		from:   cfg.From,
	}, nil
}

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set mail sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set mail recipient: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}
