package delivery

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

type EmailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

var emailTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.Title}}</h2>
  <p>{{.Body}}</p>
</body>
</html>`))

// EmailNotifier sends an SMTP copy of the notification. Messages without an
// email address are skipped.
type EmailNotifier struct {
	cfg  EmailConfig
	send func(m *gomail.Message) error
}

func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &EmailNotifier{cfg: cfg, send: func(m *gomail.Message) error {
		return dialer.DialAndSend(m)
	}}
}

func (n *EmailNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := emailTemplate.Execute(&body, msg); err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.cfg.FromEmail, n.cfg.FromName)
	m.SetHeader("To", msg.Email)
	m.SetHeader("Subject", msg.Title)
	m.SetBody("text/plain", msg.Body)
	m.AddAlternative("text/html", body.String())

	if err := n.send(m); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.Email, err)
	}
	return nil
}
