package email

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// Mailer sends templated HTML mail through SMTP. Sending is always
// best-effort: when credentials are missing or the transport fails we log
// and return false, never an error, so a notification failure can never
// roll back the lifecycle transition that triggered it.
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// NewMailerFromEnv reads the SMTP settings from the environment.
// An unconfigured mailer is still usable; Send just degrades to a log line.
func NewMailerFromEnv() *Mailer {
	m := &Mailer{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     os.Getenv("MAIL_FROM"),
	}
	if !m.Configured() {
		log.Println("WARNING: SMTP credentials not set. Emails will be logged instead of sent.")
	}
	return m
}

// Configured reports whether the mailer has enough settings to actually send.
func (m *Mailer) Configured() bool {
	return m.Host != "" && m.Port != "" && m.Username != "" && m.Password != "" && m.From != ""
}

// Send delivers one HTML email. Returns true only when the message was
// handed to the SMTP server successfully.
func (m *Mailer) Send(to string, subject string, htmlBody string) bool {
	if !m.Configured() {
		log.Printf("email (not sent, SMTP unconfigured) to=%s subject=%q", to, subject)
		return false
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.From, to, subject, htmlBody,
	)

	addr := m.Host + ":" + m.Port
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg)); err != nil {
		log.Printf("email send failed to=%s subject=%q: %v", to, subject, err)
		return false
	}
	return true
}
