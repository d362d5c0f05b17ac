package service

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/sameerjoshi/docsimus-physicians-sub001/config"

	mail "github.com/go-mail/mail/v2"
)

type mailSender interface {
	DialAndSend(m ...*mail.Message) error
}

type emailNotifier struct {
	sender mailSender
	from   string
}

// NewEmailNotifier sends plain-text emails over SMTP with mandatory STARTTLS.
func NewEmailNotifier(cfg config.SMTPConfig) Notifier {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return newEmailNotifier(d, cfg.From)
}

func newEmailNotifier(sender mailSender, from string) *emailNotifier {
	return &emailNotifier{sender: sender, from: from}
}

func (n *emailNotifier) Notify(ctx context.Context, event Event) error {
	to, subject, body := composeEmail(event)
	if to == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send %s email: %w", event.Type, err)
	}
	return nil
}

func composeEmail(event Event) (to, subject, body string) {
	switch event.Type {
	case EventApplicationSubmitted:
		return event.PhysicianEmail,
			"We received your application",
			fmt.Sprintf("Hello %s,\n\nYour onboarding application was submitted and is waiting for review.\n", event.PhysicianName)
	case EventApplicationAssigned:
		return event.ReviewerEmail,
			"New application assigned to you",
			fmt.Sprintf("Hello %s,\n\nApplication %s from %s is now assigned to you for review.\n", event.ReviewerName, event.ApplicationID, event.PhysicianName)
	case EventApplicationVerified:
		return event.PhysicianEmail,
			"Your application is verified",
			fmt.Sprintf("Hello %s,\n\nYour onboarding application was verified. Welcome aboard.\n", event.PhysicianName)
	case EventApplicationRejected:
		return event.PhysicianEmail,
			"Your application needs changes",
			fmt.Sprintf("Hello %s,\n\nYour onboarding application was not approved.\n\nReason: %s\n\nYou can reopen it, update the details and submit again.\n", event.PhysicianName, event.Reason)
	default:
		return "", "", ""
	}
}
