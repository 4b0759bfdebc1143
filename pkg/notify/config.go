package notify

import "time"

// Config holds provider credentials. Empty credentials select the log channel.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	PostmarkBaseURL      string `env:"POSTMARK_BASE_URL"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"no-reply@idvault.local"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`

	SMSGatewayURL string        `env:"SMS_GATEWAY_URL"`
	SMSAPIKey     string        `env:"SMS_API_KEY"`
	SMSSender     string        `env:"SMS_SENDER" envDefault:"IDVAULT"`
	SMSTimeout    time.Duration `env:"SMS_TIMEOUT" envDefault:"10s"`
	SMSRetryCount int           `env:"SMS_RETRY_COUNT" envDefault:"2"`
}

func (c Config) emailConfigured() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}

func (c Config) smsConfigured() bool {
	return c.SMSGatewayURL != ""
}
