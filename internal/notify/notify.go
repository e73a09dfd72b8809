package notify

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"time"

	"github.com/gramlens/gramlens/internal/config"
)

// Sender defines the interface for email sending
type Sender interface {
	Send(to, subject, htmlBody, plainBody string) error
}

// Notifier mails finished reports to the configured recipient
type Notifier struct {
	sender Sender
	to     string
}

// New creates a notifier with the given sender
func New(sender Sender, to string) *Notifier {
	return &Notifier{sender: sender, to: to}
}

// NewFromConfig creates a notifier backed by SMTP
func NewFromConfig(cfg config.EmailConfig) (*Notifier, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("email is not configured: set smtp_host and to_address")
	}
	sender := NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.FromAddr)
	return New(sender, cfg.ToAddr), nil
}

// SendReport mails a rendered Markdown report. The HTML part wraps the
// Markdown in a <pre> block so tables keep their shape in mail clients.
func (n *Notifier) SendReport(account string, generatedAt time.Time, markdown string) error {
	subject := fmt.Sprintf("%s engagement report, %s", account, generatedAt.Format("2006-01-02"))
	htmlBody := fmt.Sprintf(
		"<html><body><pre style=\"font-family: monospace\">%s</pre></body></html>",
		html.EscapeString(markdown),
	)
	return n.sender.Send(n.to, subject, htmlBody, markdown)
}

// SMTPSender sends emails via SMTP
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send sends an email via SMTP
func (s *SMTPSender) Send(to, subject, htmlBody, plainBody string) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	// Build MIME message
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: multipart/alternative; boundary=\"boundary42\"\r\n")
	msg.WriteString("\r\n")

	// Plain text part
	msg.WriteString("--boundary42\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(plainBody)
	msg.WriteString("\r\n")

	// HTML part
	msg.WriteString("--boundary42\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")

	msg.WriteString("--boundary42--\r\n")

	// Authenticate and send
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg.String()))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
