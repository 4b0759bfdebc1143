package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bpmonitor/idvault/pkg/audit"
	"github.com/bpmonitor/idvault/pkg/contact"
	"github.com/bpmonitor/idvault/pkg/identity"
	"github.com/bpmonitor/idvault/pkg/lockout"
	"github.com/bpmonitor/idvault/pkg/logger"
	"github.com/bpmonitor/idvault/pkg/otp"
	"github.com/bpmonitor/idvault/pkg/ratelimiter"
	"github.com/bpmonitor/idvault/pkg/validator"
)

// Challenges is the part of *otp.Service the gates depend on.
type Challenges interface {
	ParseContact(raw string) (contact.Contact, error)
	RequestCode(contact string) (otp.Code, error)
	VerifyCode(contact, code string) error
	IsVerified(contact string) bool
	ConsumeVerification(contact string) bool
	Reinstate(contact string)
}

var _ Challenges = (*otp.Service)(nil)

// Auditor records security events.
type Auditor interface {
	Record(ctx context.Context, action audit.Action, result audit.Result, opts ...audit.EventOption) error
}

var _ Auditor = (*audit.Recorder)(nil)

// Service implements the registration, login and recovery gates.
type Service struct {
	challenges Challenges
	users      *identity.Directory
	dispatcher Dispatcher
	lockout    *lockout.Policy
	limiter    ratelimiter.RateLimiter
	auditor    Auditor

	bcryptCost       int
	passwordStrength validator.PasswordStrength
	logger           *slog.Logger
	now              func() time.Time

	dummyOnce   sync.Once
	dummyDigest []byte

	// per-user serialization of login attempt accounting
	userLocks sync.Map

	afterRegister func(ctx context.Context, user *identity.User) error
	afterLogin    func(ctx context.Context, user *identity.User) error
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBcryptCost sets the bcrypt cost for new digests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func WithPasswordStrength(cfg validator.PasswordStrength) Option {
	return func(s *Service) {
		s.passwordStrength = cfg
	}
}

func WithLockoutPolicy(p *lockout.Policy) Option {
	return func(s *Service) {
		if p != nil {
			s.lockout = p
		}
	}
}

// WithRequestLimiter throttles code requests per contact. Keys are the
// normalized contact value.
func WithRequestLimiter(l ratelimiter.RateLimiter) Option {
	return func(s *Service) {
		s.limiter = l
	}
}

// WithAuditor records gate outcomes. Recording failures are logged and never
// fail the operation.
func WithAuditor(a Auditor) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAfterRegister sets a hook that runs after a successful registration.
func WithAfterRegister(fn func(context.Context, *identity.User) error) Option {
	return func(s *Service) {
		s.afterRegister = fn
	}
}

// WithAfterLogin sets a hook that runs after a successful login.
func WithAfterLogin(fn func(context.Context, *identity.User) error) Option {
	return func(s *Service) {
		s.afterLogin = fn
	}
}

func NewService(challenges Challenges, users *identity.Directory, dispatcher Dispatcher, opts ...Option) *Service {
	s := &Service{
		challenges:       challenges,
		users:            users,
		dispatcher:       dispatcher,
		lockout:          lockout.New(lockout.Config{}),
		bcryptCost:       bcrypt.DefaultCost,
		passwordStrength: validator.DefaultPasswordStrength,
		logger:           logger.Discard(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("auth"))
	return s
}

func (s *Service) hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
}

// burnCompare spends the time of one bcrypt comparison so that unknown
// identifiers cost the same as wrong passwords.
func (s *Service) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = bcrypt.GenerateFromPassword([]byte("idvault-dummy-password"), s.bcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyDigest, []byte(password))
}

func (s *Service) lockUser(id uuid.UUID) func() {
	v, _ := s.userLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) runHook(name string, fn func(context.Context, *identity.User) error, user *identity.User) {
	if fn == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error(name+" hook panicked",
					logger.UserID(user.ID().String()),
					slog.Any("panic", r),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := fn(ctx, user); err != nil {
			s.logger.Error(name+" hook failed",
				logger.UserID(user.ID().String()),
				logger.Error(err),
			)
		}
	}()
}

func (s *Service) audit(ctx context.Context, action audit.Action, result audit.Result, opts ...audit.EventOption) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, action, result, opts...); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event",
			logger.Event(string(action)),
			logger.Error(err),
		)
	}
}

// contactRef references c in audit events by its lookup hash.
func (s *Service) contactRef(c contact.Contact) audit.EventOption {
	return audit.WithContactHash(s.users.LookupHash(identity.ContactField(c), c.Value))
}

func userRef(u *identity.User) audit.EventOption {
	return audit.WithUserID(u.ID().String())
}

func passwordRules(field, password string, cfg validator.PasswordStrength) []validator.Rule {
	return []validator.Rule{
		validator.StrongPassword(field, password, cfg),
		validator.NotCommonPassword(field, password),
	}
}
