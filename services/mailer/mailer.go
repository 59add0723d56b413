// Package mailer composes and delivers notification emails with CSV attachments.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// ErrNotConfigured is returned when no SMTP host is set.
var ErrNotConfigured = errors.New("smtp is not configured")

// Attachment is a file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outgoing email.
type Message struct {
	To          string
	CC          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Recipients returns To followed by the non-empty CC addresses.
func (m Message) Recipients() []string {
	out := []string{m.To}
	for _, cc := range m.CC {
		if cc = strings.TrimSpace(cc); cc != "" {
			out = append(out, cc)
		}
	}
	return out
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig configures SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
	// Secure selects implicit TLS (port 465); otherwise STARTTLS via smtp.SendMail.
	Secure bool
}

// SMTPMailer handles outgoing emails via SMTP.
type SMTPMailer struct {
	cfg SMTPConfig
	now func() time.Time
}

// NewSMTPMailer creates a new SMTP mailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg, now: time.Now}
}

// Send composes msg and delivers it to every recipient.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.Host == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := Compose(m.cfg.FromName, m.cfg.From, msg, m.now())
	if err != nil {
		return err
	}

	serverAddr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if !m.cfg.Secure {
		// Port 587 - STARTTLS
		if err := smtp.SendMail(serverAddr, auth, m.cfg.From, msg.Recipients(), raw); err != nil {
			return fmt.Errorf("send mail failed: %w", err)
		}
		return nil
	}

	// Port 465 - implicit TLS
	conn, err := tls.Dial("tcp", serverAddr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return fmt.Errorf("tls dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client failed: %w", err)
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth failed: %w", err)
		}
	}
	return deliver(client, m.cfg.From, msg.Recipients(), raw)
}

func deliver(client *smtp.Client, from string, to []string, raw []byte) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO %s failed: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}
	return nil
}

// Compose renders msg as a multipart MIME message: a plain text body followed by the attachments.
func Compose(fromName, from string, msg Message, date time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetSubject(msg.Subject)
	h.SetAddressList("From", []*mail.Address{{Name: fromName, Address: from}})
	h.SetAddressList("To", []*mail.Address{{Address: msg.To}})
	if cc := msg.Recipients()[1:]; len(cc) > 0 {
		list := make([]*mail.Address, len(cc))
		for i, addr := range cc {
			list[i] = &mail.Address{Address: addr}
		}
		h.SetAddressList("Cc", list)
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail writer: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("failed to create inline part: %w", err)
	}
	var th mail.InlineHeader
	th.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	w, err := tw.CreatePart(th)
	if err != nil {
		return nil, fmt.Errorf("failed to create text part: %w", err)
	}
	if _, err := io.WriteString(w, msg.Body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}

	for _, att := range msg.Attachments {
		var ah mail.AttachmentHeader
		mediaType, params := splitContentType(att.ContentType)
		ah.SetContentType(mediaType, params)
		ah.SetFilename(att.Filename)
		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment %s: %w", att.Filename, err)
		}
		if _, err := aw.Write(att.Data); err != nil {
			return nil, err
		}
		if err := aw.Close(); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close mail writer: %w", err)
	}
	return buf.Bytes(), nil
}

// splitContentType turns "text/csv;charset=utf-8" into its media type and parameters.
func splitContentType(ct string) (string, map[string]string) {
	if ct == "" {
		return "application/octet-stream", nil
	}
	parts := strings.Split(ct, ";")
	params := map[string]string{}
	for _, p := range parts[1:] {
		if k, v, ok := strings.Cut(strings.TrimSpace(p), "="); ok {
			params[strings.ToLower(k)] = v
		}
	}
	return strings.TrimSpace(parts[0]), params
}
