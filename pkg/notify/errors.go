package notify

import "errors"

var (
	ErrInvalidConfig  = errors.New("notify: invalid config")
	ErrDeliveryFailed = errors.New("notify: delivery failed")
	ErrNoChannel      = errors.New("notify: no channel for contact kind")
	ErrInvalidMessage = errors.New("notify: invalid message")
)
