// Package email sends transactional mail over SMTP
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/pictura/v1/internal/infrastructure/config"
	"github.com/pictura/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// SMTPService sends mail through a configured SMTP relay
type SMTPService struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	logger   *zap.Logger
}

// NewSMTPService creates a new SMTP email service
func NewSMTPService(cfg *config.Config, logger *zap.Logger) outbound.EmailService {
	return &SMTPService{
		host:     cfg.Email.SMTPHost,
		port:     cfg.Email.SMTPPort,
		username: cfg.Email.SMTPUsername,
		password: cfg.Email.SMTPPassword,
		from:     cfg.Email.FromAddress,
		fromName: cfg.Email.FromName,
		logger:   logger.Named("email"),
	}
}

// SendOTP sends a verification code to the address
func (s *SMTPService) SendOTP(ctx context.Context, to string, code string) error {
	subject := "Your verification code"
	body := fmt.Sprintf(
		"Your verification code is %s.\r\n\r\nIt expires in 10 minutes. If you did not request this code, ignore this email.\r\n",
		code,
	)
	return s.send(ctx, to, subject, body)
}

// SendWelcome sends the post-registration welcome email
func (s *SMTPService) SendWelcome(ctx context.Context, to string, name string) error {
	subject := "Welcome to Pictura"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYour account is ready. Start generating images from any prompt.\r\n",
		name,
	)
	return s.send(ctx, to, subject, body)
}

func (s *SMTPService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.fromName, s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		s.logger.Error("Email send failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	s.logger.Debug("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
