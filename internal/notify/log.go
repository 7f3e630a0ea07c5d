package notify

import (
	"context"

	"github.com/dtroode/identity-server/internal/contact"
	"github.com/dtroode/identity-server/internal/logger"
)

// LogSMS writes SMS messages to the log instead of a gateway.
type LogSMS struct {
	domain string
	logger *logger.Logger
}

func NewLogSMS(domain string, logger *logger.Logger) *LogSMS {
	return &LogSMS{domain: domain, logger: logger}
}

// Send never fails. Numbers that cannot receive SMS are still logged, marked invalid.
func (n *LogSMS) Send(_ context.Context, phone, code string) error {
	text := SMSText(n.domain, code)
	if !contact.Deliverable(phone) {
		n.logger.Warn("SMS notifier: phone number is not deliverable",
			"phone", phone)
		text = "[invalid] " + text
	}
	n.logger.Info("SMS notifier: message",
		"phone", phone,
		"text", text)
	return nil
}

// LogEmail writes emails to the log instead of an SMTP server.
type LogEmail struct {
	domain string
	logger *logger.Logger
}

func NewLogEmail(domain string, logger *logger.Logger) *LogEmail {
	return &LogEmail{domain: domain, logger: logger}
}

func (n *LogEmail) Send(_ context.Context, email, code string) error {
	msg, err := Render(n.domain, code)
	if err != nil {
		return err
	}
	n.logger.Info("Email notifier: message",
		"email", email,
		"subject", msg.Subject,
		"body", msg.Body)
	return nil
}
