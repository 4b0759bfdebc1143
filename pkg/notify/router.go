package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bpmonitor/idvault/pkg/auth"
	"github.com/bpmonitor/idvault/pkg/contact"
	"github.com/bpmonitor/idvault/pkg/logger"
)

// Channel delivers a rendered message.
type Channel interface {
	Send(ctx context.Context, msg Message) error
}

// Router renders codes and hands them to the channel for the contact kind.
type Router struct {
	email  Channel
	sms    Channel
	ttl    time.Duration
	logger *slog.Logger
}

var _ auth.Dispatcher = (*Router)(nil)

type Option func(*Router)

func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithCodeTTL sets the lifetime quoted in message text.
func WithCodeTTL(ttl time.Duration) Option {
	return func(r *Router) {
		r.ttl = ttl
	}
}

// NewRouter routes email contacts to email and phone contacts to sms.
// Either channel may be nil; dispatching to it fails with ErrNoChannel.
func NewRouter(email, sms Channel, opts ...Option) *Router {
	r := &Router{email: email, sms: sms, logger: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("notify"))
	return r
}

// NewFromConfig builds a Router from cfg. A channel without credentials is
// replaced by a LogChannel.
func NewFromConfig(cfg Config, opts ...Option) (*Router, error) {
	r := NewRouter(nil, nil, opts...)

	if cfg.emailConfigured() {
		ch, err := NewEmailChannel(cfg)
		if err != nil {
			return nil, err
		}
		r.email = ch
	} else {
		r.logger.Warn("postmark credentials not set, email codes are logged")
		r.email = NewLogChannel(r.logger)
	}

	if cfg.smsConfigured() {
		ch, err := NewSMSChannel(cfg)
		if err != nil {
			return nil, err
		}
		r.sms = ch
	} else {
		r.logger.Warn("sms gateway not set, sms codes are logged")
		r.sms = NewLogChannel(r.logger)
	}

	return r, nil
}

// Dispatch implements auth.Dispatcher.
func (r *Router) Dispatch(ctx context.Context, to contact.Contact, code string, purpose auth.Purpose) error {
	var ch Channel
	switch to.Kind {
	case contact.KindEmail:
		ch = r.email
	case contact.KindPhone:
		ch = r.sms
	}
	if ch == nil {
		return ErrNoChannel
	}

	msg := render(to, code, purpose, r.ttl)
	if err := msg.validate(); err != nil {
		return err
	}

	start := time.Now()
	if err := ch.Send(ctx, msg); err != nil {
		if !errors.Is(err, ErrDeliveryFailed) {
			err = errors.Join(ErrDeliveryFailed, err)
		}
		return err
	}

	r.logger.DebugContext(ctx, "code delivered",
		logger.Contact(to.Value),
		logger.Channel(to.Method()),
		logger.Purpose(purpose.String()),
		logger.Duration(time.Since(start)),
	)
	return nil
}
