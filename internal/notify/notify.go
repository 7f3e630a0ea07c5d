// Package notify delivers verification codes by email and SMS.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/dtroode/identity-server/internal/contact"
	"github.com/dtroode/identity-server/internal/model"
)

// Dispatcher routes a code to the email or SMS notifier based on the shape of the contact.
type Dispatcher struct {
	email model.Notifier
	sms   model.Notifier
}

func NewDispatcher(email, sms model.Notifier) *Dispatcher {
	return &Dispatcher{email: email, sms: sms}
}

var _ model.Notifier = (*Dispatcher)(nil)

func (d *Dispatcher) Send(ctx context.Context, emailOrPhone, code string) error {
	c, err := contact.Parse(emailOrPhone)
	if err != nil {
		return fmt.Errorf("failed to classify contact: %w", err)
	}
	if c.IsEmail() {
		return d.email.Send(ctx, c.Value, code)
	}
	return d.sms.Send(ctx, c.Value, code)
}

var (
	subjectTemplate = template.Must(template.New("subject").Parse(`Your {{.Domain}} verification code`))
	bodyTemplate    = template.Must(template.New("body").Parse(`Your {{.Domain}} verification code is {{.Code}}.

If you did not request this code, you can ignore this message.
`))
)

// Message is a rendered verification email.
type Message struct {
	Subject string
	Body    string
}

// Render builds the verification email for code.
func Render(domain, code string) (Message, error) {
	data := struct{ Domain, Code string }{domain, code}

	var subject, body bytes.Buffer
	if err := subjectTemplate.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("failed to render subject: %w", err)
	}
	if err := bodyTemplate.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("failed to render body: %w", err)
	}
	return Message{Subject: subject.String(), Body: body.String()}, nil
}

// SMSText is the text of a verification SMS.
func SMSText(domain, code string) string {
	return fmt.Sprintf("%s is your %s verification code", code, domain)
}
