package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderName  string
	SenderEmail string
}

// SMTPNotifier sends plain-text confirmation mail through an SMTP relay.
type SMTPNotifier struct {
	cfg    SMTPConfig
	logger zerolog.Logger
}

func NewSMTP(cfg SMTPConfig, logger *zerolog.Logger) *SMTPNotifier {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.SenderEmail == "" {
		cfg.SenderEmail = cfg.Username
	}
	if cfg.SenderName == "" {
		cfg.SenderName = "Maid Services"
	}
	return &SMTPNotifier{
		cfg:    cfg,
		logger: logger.With().Str("component", "notify.smtp").Logger(),
	}
}

func (s *SMTPNotifier) Notify(_ context.Context, recipient, subject, body string) bool {
	if s.cfg.Host == "" || recipient == "" {
		return false
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	msg := buildMessage(s.cfg.SenderName, s.cfg.SenderEmail, recipient, subject, body)

	if err := smtp.SendMail(addr, auth, s.cfg.SenderEmail, []string{recipient}, []byte(msg)); err != nil {
		s.logger.Error().Err(err).Str("recipient", recipient).Msg("send mail failed")
		return false
	}

	s.logger.Debug().Str("recipient", recipient).Str("subject", subject).Msg("mail sent")
	return true
}

func buildMessage(senderName, from, to, subject, body string) string {
	return fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		senderName, from, to, subject, body,
	)
}
