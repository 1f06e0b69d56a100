package mail

import (
	"log"

	"github.com/linkmint/linkmint/internal/pkg/config"
)

// Mailer sends a transactional email.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// New selects a mail provider from the configuration. Unknown or
// incompletely configured providers fall back to the disabled no-op so a
// missing mail setup never blocks order processing.
func New(cfg *config.Config) Mailer {
	switch cfg.EmailProvider {
	case "postmark":
		if cfg.EmailAPIKey != "" && cfg.EmailFrom != "" {
			return &postmarkMailer{apiKey: cfg.EmailAPIKey, sender: cfg.EmailFrom}
		}
	case "brevo":
		if cfg.EmailAPIKey != "" && cfg.EmailFrom != "" {
			return &brevoMailer{apiKey: cfg.EmailAPIKey, sender: cfg.EmailFrom}
		}
	case "sendgrid":
		if cfg.EmailAPIKey != "" && cfg.EmailFrom != "" {
			return &sendgridMailer{apiKey: cfg.EmailAPIKey, sender: cfg.EmailFrom}
		}
	case "smtp":
		if cfg.SMTPHost != "" {
			return &smtpMailer{cfg: cfg}
		}
	case "disabled", "":
	default:
		log.Printf("unknown email provider %q, mail disabled", cfg.EmailProvider)
	}
	return DisabledMailer{}
}

// DisabledMailer drops all mail.
type DisabledMailer struct{}

func (DisabledMailer) Send(to, subject, html, text string) error {
	return nil
}
