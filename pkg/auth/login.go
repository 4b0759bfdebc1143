package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/bpmonitor/idvault/pkg/audit"
	"github.com/bpmonitor/idvault/pkg/identity"
	"github.com/bpmonitor/idvault/pkg/logger"
)

// Authenticate checks a password for the user holding identifier, an email
// address or phone number.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*identity.User, error) {
	c, err := s.challenges.ParseContact(identifier)
	if err != nil {
		s.burnCompare(password)
		return nil, ErrInvalidCredentials
	}

	matches, err := s.users.FindByContact(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	// A phone shared by several accounts cannot identify one of them.
	if len(matches) != 1 {
		s.burnCompare(password)
		s.audit(ctx, audit.ActionLogin, audit.ResultFailure, s.contactRef(c), audit.WithReason("unknown_identifier"))
		return nil, ErrInvalidCredentials
	}

	unlock := s.lockUser(matches[0].ID())
	defer unlock()

	// Reload under the per-user lock so concurrent failures are all counted.
	user, err := s.users.GetByID(ctx, matches[0].ID())
	if err != nil {
		s.burnCompare(password)
		return nil, ErrInvalidCredentials
	}

	if err := s.lockout.Check(user.Lockout()); err != nil {
		s.logger.WarnContext(ctx, "login attempt on locked account", logger.UserID(user.ID().String()))
		s.audit(ctx, audit.ActionLogin, audit.ResultFailure, userRef(user), audit.WithReason("locked"))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordDigest(), []byte(password)); err != nil {
		state, locked := s.lockout.RecordFailure(user.Lockout())
		user.SetLockout(state)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to record failed login: %w", err)
		}
		if locked {
			s.logger.WarnContext(ctx, "account locked after failed logins",
				logger.UserID(user.ID().String()),
				logger.Contact(c.Value),
			)
			s.audit(ctx, audit.ActionAccountLocked, audit.ResultSuccess,
				userRef(user),
				audit.WithMetadata("locked_until", state.LockedUntil),
			)
			return nil, ErrAccountLocked
		}
		s.logger.InfoContext(ctx, "failed login",
			logger.UserID(user.ID().String()),
			logger.Count(int(state.FailedAttempts)),
		)
		s.audit(ctx, audit.ActionLogin, audit.ResultFailure,
			userRef(user),
			audit.WithReason("bad_password"),
			audit.WithMetadata("failed_attempts", int(state.FailedAttempts)),
		)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		s.audit(ctx, audit.ActionLogin, audit.ResultFailure, userRef(user), audit.WithReason("disabled"))
		return nil, ErrAccountDisabled
	}

	user.SetLockout(s.lockout.RecordSuccess(user.Lockout()))
	user.SetLastLoginAt(s.now())
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	s.audit(ctx, audit.ActionLogin, audit.ResultSuccess, userRef(user))
	s.runHook("afterLogin", s.afterLogin, user)
	return user, nil
}
