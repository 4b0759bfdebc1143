package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bpmonitor/idvault/pkg/audit"
	"github.com/bpmonitor/idvault/pkg/contact"
	"github.com/bpmonitor/idvault/pkg/identity"
	"github.com/bpmonitor/idvault/pkg/logger"
	"github.com/bpmonitor/idvault/pkg/otp"
	"github.com/bpmonitor/idvault/pkg/validator"
)

// ResetPassword sets a new password for the user holding raw after checking
// a code sent to it. The account is unlocked as well.
func (s *Service) ResetPassword(ctx context.Context, raw, code, newPassword string) (*identity.User, error) {
	if err := validator.Apply(passwordRules("new_password", newPassword, s.passwordStrength)...); err != nil {
		return nil, err
	}

	c, err := s.challenges.ParseContact(raw)
	if err != nil {
		return nil, err
	}
	if err := s.challenges.VerifyCode(c.Value, code); err != nil {
		if errors.Is(err, otp.ErrInvalidContact) {
			return nil, err
		}
		return nil, errors.Join(ErrInvalidCode, err)
	}
	// The code was spent on this reset; it must not also count as a verified contact.
	s.challenges.ConsumeVerification(c.Value)

	matches, err := s.users.FindByContact(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if len(matches) != 1 {
		return nil, ErrInvalidCredentials
	}

	unlock := s.lockUser(matches[0].ID())
	defer unlock()

	user, err := s.users.GetByID(ctx, matches[0].ID())
	if err != nil {
		return nil, err
	}

	digest, err := s.hashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.SetPasswordDigest(digest)
	user.SetLockout(s.lockout.Unlock(user.Lockout()))

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset", logger.UserID(user.ID().String()))
	s.audit(ctx, audit.ActionPasswordReset, audit.ResultSuccess, userRef(user), s.contactRef(c))
	return user, nil
}

// ChangePassword replaces the password of a signed-in user.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if err := validator.Apply(passwordRules("new_password", next, s.passwordStrength)...); err != nil {
		return err
	}

	unlock := s.lockUser(userID)
	defer unlock()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordDigest(), []byte(current)); err != nil {
		s.audit(ctx, audit.ActionPasswordChanged, audit.ResultFailure, userRef(user), audit.WithReason("bad_password"))
		return ErrInvalidCredentials
	}

	digest, err := s.hashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.SetPasswordDigest(digest)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed", logger.UserID(user.ID().String()))
	s.audit(ctx, audit.ActionPasswordChanged, audit.ResultSuccess, userRef(user))
	return nil
}

// UpdateContact replaces the email or phone of a user with a freshly
// verified one and marks it verified. The verification is consumed.
func (s *Service) UpdateContact(ctx context.Context, userID uuid.UUID, raw string) (*identity.User, error) {
	c, err := s.challenges.ParseContact(raw)
	if err != nil {
		return nil, err
	}
	if !s.challenges.IsVerified(c.Value) {
		return nil, ErrContactNotVerified
	}

	field := identity.ContactField(c)
	holders, err := s.users.Find(ctx, field, c.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	for _, h := range holders {
		if h.ID() != userID {
			return nil, errors.Join(ErrAlreadyRegistered, &identity.DuplicateError{Field: field})
		}
	}

	unlock := s.lockUser(userID)
	defer unlock()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if c.Kind == contact.KindPhone {
		err = user.SetPhone(c.Value)
		user.SetPhoneVerified(true)
	} else {
		err = user.SetEmail(c.Value)
		user.SetEmailVerified(true)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to seal contact: %w", err)
	}

	if !s.challenges.ConsumeVerification(c.Value) {
		return nil, ErrContactNotVerified
	}
	if err := s.users.Update(ctx, user); err != nil {
		s.challenges.Reinstate(c.Value)
		if errors.Is(err, identity.ErrDuplicate) {
			return nil, errors.Join(ErrAlreadyRegistered, err)
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	s.logger.InfoContext(ctx, "contact updated",
		logger.UserID(user.ID().String()),
		logger.Contact(c.Value),
	)
	s.audit(ctx, audit.ActionContactUpdated, audit.ResultSuccess,
		userRef(user),
		s.contactRef(c),
		audit.WithMetadata("channel", c.Method()),
	)
	return user, nil
}
