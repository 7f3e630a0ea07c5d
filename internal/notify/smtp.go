package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/dtroode/identity-server/internal/config"
)

type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPEmail sends verification emails through an SMTP server.
type SMTPEmail struct {
	from   string
	domain string
	sender mailSender
}

// NewSMTPEmail creates an SMTP notifier. Authentication is used when a username is set.
func NewSMTPEmail(cfg config.SMTP, domain string) (*SMTPEmail, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
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
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return newSMTPEmail(cfg.From, domain, client), nil
}

func newSMTPEmail(from, domain string, sender mailSender) *SMTPEmail {
	return &SMTPEmail{from: from, domain: domain, sender: sender}
}

func (n *SMTPEmail) Send(ctx context.Context, email, code string) error {
	rendered, err := Render(n.domain, code)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(rendered.Subject)
	msg.SetBodyString(mail.TypeTextPlain, rendered.Body)

	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
