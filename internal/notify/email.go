package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/playbookTV/leadscan-sub000/internal/config"
	"github.com/playbookTV/leadscan-sub000/internal/models"
)

const mimeBoundary = "LeadscanBoundary7f3a9c"

// Email sends lead notifications over SMTP.
type Email struct {
	cfg  *config.Config
	send func(to []string, msg []byte) error
}

// NewEmail creates an SMTP notifier for cfg.SMTPTo.
func NewEmail(cfg *config.Config) *Email {
	e := &Email{cfg: cfg}
	e.send = e.sendSMTP
	return e
}

// Notify mails the lead to every configured recipient.
func (e *Email) Notify(ctx context.Context, lead *models.Lead) error {
	if len(e.cfg.SMTPTo) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := e.buildMessage(e.cfg.SMTPTo, Subject(lead), LeadHTML(lead), LeadText(lead))
	if err := e.send(e.cfg.SMTPTo, msg); err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	return nil
}

// buildMessage assembles a multipart/alternative MIME message.
func (e *Email) buildMessage(to []string, subject, htmlBody, textBody string) []byte {
	from := e.cfg.SMTPFrom
	if e.cfg.SMTPFromName != "" {
		from = fmt.Sprintf("%s <%s>", e.cfg.SMTPFromName, e.cfg.SMTPFrom)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", singleLine(subject)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", mimeBoundary)

	if textBody != "" {
		fmt.Fprintf(&msg, "--%s\r\n", mimeBoundary)
		msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		msg.WriteString(textBody)
		msg.WriteString("\r\n")
	}
	if htmlBody != "" {
		fmt.Fprintf(&msg, "--%s\r\n", mimeBoundary)
		msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		msg.WriteString(htmlBody)
		msg.WriteString("\r\n")
	}
	fmt.Fprintf(&msg, "--%s--\r\n", mimeBoundary)

	return []byte(msg.String())
}

func (e *Email) sendSMTP(to []string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", e.cfg.SMTPHost, e.cfg.SMTPPort)

	var auth smtp.Auth
	if e.cfg.SMTPUsername != "" && e.cfg.SMTPPassword != "" {
		auth = smtp.PlainAuth("", e.cfg.SMTPUsername, e.cfg.SMTPPassword, e.cfg.SMTPHost)
	}

	tlsConfig := &tls.Config{
		ServerName: e.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}

	switch e.cfg.SMTPTLS {
	case "tls":
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("TLS dial failed: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, e.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("SMTP client failed: %w", err)
		}
		defer client.Close()
		return e.deliver(client, auth, to, msg)
	case "starttls":
		client, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("SMTP dial failed: %w", err)
		}
		defer client.Close()

		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
		return e.deliver(client, auth, to, msg)
	default: // "none"
		return smtp.SendMail(addr, auth, e.cfg.SMTPFrom, to, msg)
	}
}

func (e *Email) deliver(client *smtp.Client, auth smtp.Auth, to []string, msg []byte) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(e.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("SMTP MAIL failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("SMTP RCPT failed: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("SMTP write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("SMTP close failed: %w", err)
	}

	return client.Quit()
}
