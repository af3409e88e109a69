package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Config holds SMTP configuration for sending emails. An empty Host disables mail.
type Config struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"     envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

// Enabled reports whether an SMTP host was configured.
func (c Config) Enabled() bool {
	return c.Host != ""
}

// Validate checks that every setting needed to send mail is present.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}

	return nil
}

// Email represents an email message.
type Email struct {
	To       []string
	ReplyTo  string
	Subject  string
	Body     string
	HTMLBody string
}

// Sender delivers prepared messages.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer represents an email sender.
type Mailer struct {
	from   string
	sender Sender
}

// NewMailer creates a Mailer dialing the configured SMTP server.
func NewMailer(cfg Config) (*Mailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return NewMailerWithSender(cfg.From, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)), nil
}

// NewMailerWithSender creates a Mailer delivering through sender.
func NewMailerWithSender(from string, sender Sender) *Mailer {
	return &Mailer{from: from, sender: sender}
}

// Send sends a single email.
func (m *Mailer) Send(email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	return m.sender.DialAndSend(m.message(email))
}

// SendHTML sends an HTML email with a plain-text alternative.
func (m *Mailer) SendHTML(to []string, subject, htmlBody, textBody string) error {
	return m.Send(Email{
		To:       to,
		Subject:  subject,
		Body:     textBody,
		HTMLBody: htmlBody,
	})
}

func (m *Mailer) message(email Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	if email.ReplyTo != "" {
		msg.SetHeader("Reply-To", email.ReplyTo)
	}
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}

	return msg
}
