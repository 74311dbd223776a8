// Package mail delivers transactional email through Resend.
package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/pkg/config"
)

// Sender is the outbound email collaborator. Delivery failure is soft;
// callers log and continue.
type Sender interface {
	Send(ctx context.Context, to, subject, text string) error
}

type ResendSender struct {
	client *resend.Client
	cfg    config.ResendConfig
	logger *zap.Logger
}

var _ Sender = (*ResendSender)(nil)

func NewResendSender(cfg config.ResendConfig, logger *zap.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(cfg.APIKey),
		cfg:    cfg,
		logger: logger,
	}
}

func (s *ResendSender) Send(ctx context.Context, to, subject, text string) error {
	if s.cfg.APIKey == "" {
		s.logger.Warn("Resend API key not configured, dropping email", zap.String("subject", subject))
		return fmt.Errorf("resend api key not configured")
	}

	params := &resend.SendEmailRequest{
		From:    s.cfg.FromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Warn("Failed to send email", zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("sending email: %w", err)
	}

	s.logger.Info("Email sent", zap.String("id", sent.Id), zap.String("subject", subject))
	return nil
}
