package httpapi

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidBody          = errors.New("invalid request body")
	ErrBodyTooLarge         = errors.New("request body too large")
)
