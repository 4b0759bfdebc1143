package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bpmonitor/idvault/pkg/contact"
	"github.com/bpmonitor/idvault/pkg/logger"
	"github.com/bpmonitor/idvault/pkg/secrets"
	"github.com/bpmonitor/idvault/pkg/totp"
)

const saltSize = 16

// Code is an issued one-time code. Value must only be handed to the delivery channel.
type Code struct {
	Contact   contact.Contact
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type challenge struct {
	generator *totp.Generator
	issuedAt  time.Time
	ttl       time.Duration
	spent     bool
}

func (c *challenge) expired(now time.Time) bool {
	return now.Sub(c.issuedAt) > c.ttl
}

// Service is the in-memory challenge table plus the verified-contact set.
// Safe for concurrent use.
type Service struct {
	cfg         Config
	seedKey     []byte
	contactOpts []contact.Option
	now         func() time.Time
	logger      *slog.Logger

	mu         sync.Mutex
	challenges map[string]*challenge
	verified   map[string]time.Time // contact -> verification expiry

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now. Tests use it to move across code windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service. seedKey is the server-held key every contact
// seed is derived from; see secrets.PurposeOTPSeed.
func NewService(seedKey []byte, cfg Config, opts ...Option) (*Service, error) {
	if len(seedKey) == 0 {
		return nil, errors.Join(ErrInvalidConfig, secrets.ErrKeyNotSet)
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	k := make([]byte, len(seedKey))
	copy(k, seedKey)

	s := &Service{
		cfg:         cfg,
		seedKey:     k,
		contactOpts: []contact.Option{contact.WithDefaultCountryCode(cfg.CountryCode)},
		now:         time.Now,
		logger:      logger.Discard(),
		challenges:  make(map[string]*challenge),
		verified:    make(map[string]time.Time),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("otp"))
	return s, nil
}

// NewServiceFromKeyring derives the seed key from ring.
func NewServiceFromKeyring(ring *secrets.Keyring, cfg Config, opts ...Option) (*Service, error) {
	key, err := ring.Derive(secrets.PurposeOTPSeed)
	if err != nil {
		return nil, err
	}
	return NewService(key, cfg, opts...)
}

func (s *Service) Config() Config { return s.cfg }

// ParseContact normalizes raw with the service's country code.
func (s *Service) ParseContact(raw string) (contact.Contact, error) {
	c, err := contact.Parse(raw, s.contactOpts...)
	if err != nil {
		return contact.Contact{}, errors.Join(ErrInvalidContact, err)
	}
	return c, nil
}

// RequestCode creates a challenge for the contact, replacing any live one,
// and returns its current code. Nothing is sent.
func (s *Service) RequestCode(raw string) (Code, error) {
	c, err := s.ParseContact(raw)
	if err != nil {
		return Code{}, err
	}

	gen, err := s.newGenerator(c.Value)
	if err != nil {
		return Code{}, err
	}

	now := s.now()
	ch := &challenge{generator: gen, issuedAt: now, ttl: s.cfg.TTL}

	s.mu.Lock()
	_, replaced := s.challenges[c.Value]
	s.challenges[c.Value] = ch
	s.mu.Unlock()

	s.logger.Debug("otp issued", logger.Contact(c.Value), slog.Bool("replaced", replaced))

	return Code{
		Contact:   c,
		Value:     gen.At(now),
		IssuedAt:  now,
		ExpiresAt: now.Add(ch.ttl),
	}, nil
}

// newGenerator keys a generator with HMAC(seed(contact), salt). The per-issue
// salt makes a reissued challenge produce an unrelated code even inside the
// same time window.
func (s *Service) newGenerator(normalized string) (*totp.Generator, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, secrets.DeriveSeed(s.seedKey, normalized))
	mac.Write(salt)
	return totp.New(mac.Sum(nil), totp.Params{Digits: s.cfg.Digits, Period: s.cfg.TTL})
}

// VerifyCode checks code against the contact's live challenge. On success the
// contact enters the verified set and the challenge is spent: it stays until it
// expires or is replaced, but no further code is accepted for it. A mismatch
// changes nothing.
func (s *Service) VerifyCode(raw, code string) error {
	c, err := s.ParseContact(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[c.Value]
	if !ok || ch.spent {
		return ErrChallengeNotFound
	}

	now := s.now()
	if ch.expired(now) {
		delete(s.challenges, c.Value)
		return ErrChallengeExpired
	}
	if !ch.generator.Verify(code, now, s.cfg.Skew) {
		return ErrCodeMismatch
	}

	ch.spent = true
	s.verified[c.Value] = now.Add(s.cfg.VerifiedTTL)
	return nil
}

// IsVerified reports whether the contact holds an unexpired verification.
func (s *Service) IsVerified(raw string) bool {
	c, err := s.ParseContact(raw)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveVerification(c.Value)
}

// ConsumeVerification removes the contact's verification and reports whether
// one was present. Concurrent callers cannot both get true.
func (s *Service) ConsumeVerification(raw string) bool {
	c, err := s.ParseContact(raw)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.liveVerification(c.Value) {
		return false
	}
	delete(s.verified, c.Value)
	return true
}

// Reinstate grants a fresh verification to a contact whose verification was
// consumed by an operation that then failed.
func (s *Service) Reinstate(raw string) {
	c, err := s.ParseContact(raw)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.verified[c.Value] = s.now().Add(s.cfg.VerifiedTTL)
	s.mu.Unlock()
}

// must hold s.mu
func (s *Service) liveVerification(key string) bool {
	exp, ok := s.verified[key]
	if !ok {
		return false
	}
	if !s.now().Before(exp) {
		delete(s.verified, key)
		return false
	}
	return true
}

// TimeRemaining returns how long the contact's code stays valid.
// The bool is false when there is no live challenge.
func (s *Service) TimeRemaining(raw string) (time.Duration, bool) {
	c, err := s.ParseContact(raw)
	if err != nil {
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[c.Value]
	if !ok {
		return 0, false
	}
	left := ch.issuedAt.Add(ch.ttl).Sub(s.now())
	if left < 0 {
		return 0, false
	}
	return left, true
}

// Len returns the number of stored challenges and verifications, expired or not.
func (s *Service) Len() (challenges, verified int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges), len(s.verified)
}
