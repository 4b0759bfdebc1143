package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type smsRequest struct {
	To   string `json:"to"`
	From string `json:"from"`
	Text string `json:"text"`
}

type smsResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SMSChannel posts messages as JSON to an SMS gateway at {SMSGatewayURL}/messages.
type SMSChannel struct {
	client *resty.Client
	sender string
}

func NewSMSChannel(cfg Config) (*SMSChannel, error) {
	if cfg.SMSGatewayURL == "" {
		return nil, fmt.Errorf("%w: SMSGatewayURL is required", ErrInvalidConfig)
	}
	if cfg.SMSSender == "" {
		return nil, fmt.Errorf("%w: SMSSender is required", ErrInvalidConfig)
	}

	timeout := cfg.SMSTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.SMSGatewayURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(max(cfg.SMSRetryCount, 0)).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.SMSAPIKey != "" {
		client.SetAuthToken(cfg.SMSAPIKey)
	}

	return &SMSChannel{client: client, sender: cfg.SMSSender}, nil
}

// Send implements Channel.
func (c *SMSChannel) Send(ctx context.Context, msg Message) error {
	var result smsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(smsRequest{To: msg.To.Value, From: c.sender, Text: msg.Text}).
		SetResult(&result).
		SetError(&result).
		Post("/messages")
	if err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}
	if resp.IsError() {
		return errors.Join(
			ErrDeliveryFailed,
			fmt.Errorf("sms gateway error: %d - %s", resp.StatusCode(), result.Error),
		)
	}
	return nil
}
