package auth

import (
	"context"
	"errors"
	"time"

	"github.com/bpmonitor/idvault/pkg/audit"
	"github.com/bpmonitor/idvault/pkg/contact"
	"github.com/bpmonitor/idvault/pkg/logger"
	"github.com/bpmonitor/idvault/pkg/otp"
)

// VerificationTicket is what the client learns about an issued code.
type VerificationTicket struct {
	Contact       contact.Contact
	ContactMethod string
	MaskedTarget  string
	ExpiresIn     time.Duration
	ExpiresAt     time.Time
	Purpose       Purpose
}

// RequestContactVerification issues a code for raw and hands it to the dispatcher.
func (s *Service) RequestContactVerification(ctx context.Context, raw string, purpose Purpose) (*VerificationTicket, error) {
	if !purpose.Valid() {
		return nil, ErrInvalidPurpose
	}

	c, err := s.challenges.ParseContact(raw)
	if err != nil {
		return nil, err
	}
	if err := s.allowRequest(ctx, c); err != nil {
		return nil, err
	}

	code, err := s.challenges.RequestCode(c.Value)
	if err != nil {
		return nil, err
	}

	if err := s.dispatcher.Dispatch(ctx, code.Contact, code.Value, purpose); err != nil {
		s.logger.ErrorContext(ctx, "otp dispatch failed",
			logger.Contact(code.Contact.Value),
			logger.Purpose(purpose.String()),
			logger.Error(err),
		)
		s.audit(ctx, audit.ActionOTPRequested, audit.ResultError,
			s.contactRef(code.Contact),
			audit.WithReason("dispatch_failed"),
			audit.WithMetadata("purpose", purpose.String()),
		)
		return nil, errors.Join(ErrDispatchFailed, err)
	}
	s.audit(ctx, audit.ActionOTPRequested, audit.ResultSuccess,
		s.contactRef(code.Contact),
		audit.WithMetadata("purpose", purpose.String()),
		audit.WithMetadata("channel", code.Contact.Method()),
	)

	s.logger.InfoContext(ctx, "otp sent",
		logger.Contact(code.Contact.Value),
		logger.Purpose(purpose.String()),
		logger.Channel(code.Contact.Method()),
	)

	return &VerificationTicket{
		Contact:       code.Contact,
		ContactMethod: code.Contact.Method(),
		MaskedTarget:  contact.Mask(code.Contact.Value),
		ExpiresIn:     code.ExpiresAt.Sub(code.IssuedAt),
		ExpiresAt:     code.ExpiresAt,
		Purpose:       purpose,
	}, nil
}

// ConfirmContactVerification checks code and, on success, marks raw verified.
// Every code failure is reported as ErrInvalidCode wrapping the otp error.
func (s *Service) ConfirmContactVerification(ctx context.Context, raw, code string, purpose Purpose) (bool, error) {
	if !purpose.Valid() {
		return false, ErrInvalidPurpose
	}

	c, err := s.challenges.ParseContact(raw)
	if err != nil {
		return false, err
	}

	if err := s.challenges.VerifyCode(c.Value, code); err != nil {
		if errors.Is(err, otp.ErrInvalidContact) {
			return false, err
		}
		s.audit(ctx, audit.ActionOTPVerified, audit.ResultFailure,
			s.contactRef(c),
			audit.WithReason(codeFailureReason(err)),
			audit.WithMetadata("purpose", purpose.String()),
		)
		s.logger.InfoContext(ctx, "otp rejected",
			logger.Contact(raw),
			logger.Purpose(purpose.String()),
			logger.Error(err),
		)
		return false, errors.Join(ErrInvalidCode, err)
	}

	s.logger.InfoContext(ctx, "otp verified", logger.Contact(raw), logger.Purpose(purpose.String()))
	s.audit(ctx, audit.ActionOTPVerified, audit.ResultSuccess,
		s.contactRef(c),
		audit.WithMetadata("purpose", purpose.String()),
	)
	return true, nil
}

func codeFailureReason(err error) string {
	switch {
	case errors.Is(err, otp.ErrChallengeExpired):
		return "expired"
	case errors.Is(err, otp.ErrChallengeNotFound):
		return "no_challenge"
	}
	return "mismatch"
}

func (s *Service) allowRequest(ctx context.Context, c contact.Contact) error {
	if s.limiter == nil {
		return nil
	}
	res, err := s.limiter.Allow(ctx, "otp:"+c.Value)
	if err != nil {
		// Fail open. A broken limiter must not block sign-in.
		s.logger.WarnContext(ctx, "rate limiter unavailable", logger.Error(err))
		return nil
	}
	if !res.Allowed() {
		s.logger.WarnContext(ctx, "otp request throttled",
			logger.Contact(c.Value),
			logger.Duration(res.RetryAfter()),
		)
		s.audit(ctx, audit.ActionOTPRequested, audit.ResultFailure,
			s.contactRef(c),
			audit.WithReason("throttled"),
		)
		return &RateLimitError{RetryAfter: res.RetryAfter()}
	}
	return nil
}
