package notify

import (
	"context"
	"log/slog"

	"github.com/bpmonitor/idvault/pkg/logger"
)

// LogChannel writes messages to a logger instead of delivering them.
// For development only: the code appears in the log.
type LogChannel struct {
	logger *slog.Logger
}

func NewLogChannel(l *slog.Logger) *LogChannel {
	if l == nil {
		l = logger.Discard()
	}
	return &LogChannel{logger: l}
}

// Send implements Channel.
func (c *LogChannel) Send(ctx context.Context, msg Message) error {
	c.logger.WarnContext(ctx, "code not delivered, logging instead",
		logger.Contact(msg.To.Value),
		logger.Channel(msg.To.Method()),
		logger.Purpose(msg.Purpose.String()),
		slog.String("otp_code", msg.Code),
	)
	return nil
}
