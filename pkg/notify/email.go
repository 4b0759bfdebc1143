package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"

	"github.com/bpmonitor/idvault/pkg/validator"
)

// EmailChannel sends codes through Postmark's transactional API.
type EmailChannel struct {
	client  *postmark.Client
	sender  string
	replyTo string
}

// NewEmailChannel requires both Postmark tokens and a valid sender address.
func NewEmailChannel(cfg Config) (*EmailChannel, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}
	if err := validator.Apply(
		validator.ValidEmail("SenderEmail", cfg.SenderEmail),
		validator.When(cfg.SupportEmail != "", validator.ValidEmail("SupportEmail", cfg.SupportEmail)),
	); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	client := postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken)
	if cfg.PostmarkBaseURL != "" {
		client.BaseURL = cfg.PostmarkBaseURL
	}

	return &EmailChannel{
		client:  client,
		sender:  cfg.SenderEmail,
		replyTo: cfg.SupportEmail,
	}, nil
}

// Send implements Channel. Tracking is off for code mail.
func (c *EmailChannel) Send(ctx context.Context, msg Message) error {
	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:     c.sender,
		ReplyTo:  c.replyTo,
		To:       msg.To.Value,
		Subject:  msg.Subject,
		Tag:      string(msg.Purpose),
		TextBody: msg.Text,
		HTMLBody: msg.HTML,
	})
	if err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrDeliveryFailed,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}
