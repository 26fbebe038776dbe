package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/volunteerhub/backend/internal/config"
	"github.com/volunteerhub/backend/pkg/logger"
)

// EmailService delivers HTML mail over SMTP.
type EmailService struct {
	cfg *config.EmailConfig
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled reports whether an SMTP server is configured.
func (s *EmailService) Enabled() bool {
	return s.cfg.Enabled && s.cfg.Host != ""
}

// Deliver sends one task. It is the processor of both task queues.
func (s *EmailService) Deliver(ctx context.Context, task *EmailTask) error {
	if !s.Enabled() {
		logger.Debug().Str("to", task.To).Str("subject", task.Subject).Msg("[Email] SMTP disabled, skipping")
		return nil
	}
	if task.To == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.sendEmail([]string{task.To}, task.Subject, task.HTML); err != nil {
		logger.Warn().Err(err).Str("to", task.To).Msg("[Email] Failed to send email")
		return err
	}

	logger.Info().Str("to", task.To).Str("subject", task.Subject).Msg("[Email] Sent")
	return nil
}

func (s *EmailService) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.Username
}

func buildMessage(from string, to []string, subject, body string) string {
	headers := [][2]string{
		{"From", from},
		{"To", strings.Join(to, ",")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var message strings.Builder
	for _, h := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	message.WriteString("\r\n")
	message.WriteString(body)
	return message.String()
}

func (s *EmailService) sendEmail(to []string, subject, body string) error {
	from := s.from()
	message := buildMessage(from, to, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseTLS {
		return s.sendEmailTLS(addr, auth, from, to, message)
	}
	return smtp.SendMail(addr, auth, from, to, []byte(message))
}

func (s *EmailService) sendEmailTLS(addr string, auth smtp.Auth, from string, to []string, message string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
