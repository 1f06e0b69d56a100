package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/linkmint/linkmint/internal/pkg/config"
)

// smtpMailer sends emails via SMTP
type smtpMailer struct {
	cfg *config.Config
}

func (m *smtpMailer) Send(to, subject, html, text string) error {
	sender := m.cfg.EmailFrom
	if sender == "" {
		sender = "no-reply@localhost"
		log.Printf("EMAIL_FROM not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if m.cfg.SMTPUsername != "" && m.cfg.SMTPPassword != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.SMTPHost, m.cfg.SMTPPort)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			html,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	}
	return err
}
