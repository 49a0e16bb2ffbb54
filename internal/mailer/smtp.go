package mailer

import (
	"bytes"
	"fmt"
	"net/http"
	"text/template"
	"time"

	mail "gopkg.in/mail.v2"
)

type SMTPClient struct {
	fromEmail string
	dialer    *mail.Dialer
}

func NewSMTPClient(host string, port int, username, password, fromEmail string) (*SMTPClient, error) {
	if host == "" || fromEmail == "" {
		return nil, fmt.Errorf("smtp host and from email are required")
	}

	return &SMTPClient{
		fromEmail: fromEmail,
		dialer:    mail.NewDialer(host, port, username, password),
	}, nil
}

// Send renders the named embedded template (subject + body blocks) and
// delivers it, retrying transient failures a few times.
func (c *SMTPClient) Send(templateFile, username, email string, data any) (int, error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return -1, err
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return -1, err
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return -1, err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(c.fromEmail, FromName))
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/html", body.String())

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := c.dialer.DialAndSend(msg); err != nil {
			lastErr = err
			time.Sleep(time.Second * time.Duration(i+1))
			continue
		}
		return http.StatusOK, nil
	}

	return -1, fmt.Errorf("failed to send email to %s after %d attempts: %w", email, maxRetries, lastErr)
}
