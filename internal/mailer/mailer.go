// Package mailer delivers report files by e-mail
package mailer

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"strconv"

	"github.com/domodwyer/mailyak/v3"

	"attendance-reporter/config"
)

// Message is one report e-mail
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentPath string
}

// Sender defines the interface for report delivery
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends mail through an authenticated SMTP relay.
// STARTTLS is negotiated when the server offers it.
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender creates a sender for the given relay
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.cfg.Server == "" {
		return fmt.Errorf("SMTP server not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Server, strconv.Itoa(s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Server)
	}

	mail := mailyak.New(addr, auth)
	mail.From(s.cfg.User)
	mail.To(msg.To)
	mail.Subject(msg.Subject)
	mail.Plain().Set(msg.Body)

	if msg.AttachmentPath != "" {
		file, err := os.Open(msg.AttachmentPath)
		if err != nil {
			return fmt.Errorf("failed to open attachment: %w", err)
		}
		defer file.Close()
		mail.Attach(filepath.Base(msg.AttachmentPath), file)
	}

	if err := mail.Send(); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}

	log.Printf("📧 Email sent to %s", msg.To)
	return nil
}

var _ Sender = (*SMTPSender)(nil)
