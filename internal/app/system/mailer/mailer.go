// Package mailer delivers enrollment notifications. Providers: AWS SES
// for real delivery and a zap-backed no-op for development.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// Email is a fully rendered message ready for delivery.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends rendered emails.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// Config selects and configures a provider.
type Config struct {
	Provider    string // "ses" or "noop"
	FromAddress string
	FromName    string

	SESRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string
}

// New creates a Mailer from config. Provider "ses" uses AWS SES; "noop"
// or anything unrecognized logs instead of sending.
func New(cfg Config, logger *zap.Logger) (Mailer, error) {
	switch cfg.Provider {
	case "ses":
		awsCfg := aws.Config{
			Region: cfg.SESRegion,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(cfg.SESAccessKeyID, cfg.SESSecretAccessKey, ""),
			),
		}
		return &sesMailer{
			client:      ses.NewFromConfig(awsCfg),
			fromAddress: cfg.FromAddress,
			fromName:    cfg.FromName,
			log:         logger,
		}, nil
	case "noop":
		return &noopMailer{log: logger}, nil
	default:
		logger.Warn("unknown mail provider, using noop", zap.String("provider", cfg.Provider))
		return &noopMailer{log: logger}, nil
	}
}

type sesMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
	log         *zap.Logger
}

func (m *sesMailer) Send(ctx context.Context, msg Email) error {
	source := m.fromAddress
	if m.fromName != "" {
		source = fmt.Sprintf("%s <%s>", m.fromName, m.fromAddress)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(msg.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if msg.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(msg.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}
	if msg.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(msg.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("send email via SES: %w", err)
	}
	m.log.Info("email sent",
		zap.String("to", msg.To),
		zap.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

type noopMailer struct {
	log *zap.Logger
}

func (m *noopMailer) Send(ctx context.Context, msg Email) error {
	m.log.Info("email would be sent (noop)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
