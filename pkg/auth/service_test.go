package auth_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bpmonitor/idvault/pkg/auth"
	"github.com/bpmonitor/idvault/pkg/fieldcrypt"
	"github.com/bpmonitor/idvault/pkg/identity"
	"github.com/bpmonitor/idvault/pkg/lockout"
	"github.com/bpmonitor/idvault/pkg/otp"
	"github.com/bpmonitor/idvault/pkg/ratelimiter"
	"github.com/bpmonitor/idvault/pkg/validator"
)

const password = "blood2pressure"

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc        *auth.Service
	otp        *otp.Service
	users      *identity.Directory
	dispatcher *MockDispatcher
	clock      *clock
}

func newFixture(t *testing.T, opts ...auth.Option) *fixture {
	t.Helper()

	clk := &clock{t: time.Unix(1_700_000_100, 0)}

	challenges, err := otp.NewService(bytes.Repeat([]byte{0x11}, 32), otp.DefaultConfig(), otp.WithClock(clk.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = challenges.Close() })

	codec, err := fieldcrypt.New(bytes.Repeat([]byte{0x22}, 32), bytes.Repeat([]byte{0x33}, 32))
	require.NoError(t, err)
	users := identity.NewDirectory(identity.NewMemoryStore(), codec, identity.WithDirectoryClock(clk.Now))

	dispatcher := &MockDispatcher{}
	dispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	opts = append([]auth.Option{
		auth.WithBcryptCost(bcrypt.MinCost),
		auth.WithClock(clk.Now),
		auth.WithLockoutPolicy(lockout.New(lockout.Config{}, lockout.WithClock(clk.Now))),
	}, opts...)

	return &fixture{
		svc:        auth.NewService(challenges, users, dispatcher, opts...),
		otp:        challenges,
		users:      users,
		dispatcher: dispatcher,
		clock:      clk,
	}
}

// verify runs the request and confirm steps for value.
func (f *fixture) verify(t *testing.T, value string, purpose auth.Purpose) {
	t.Helper()
	ticket, err := f.svc.RequestContactVerification(t.Context(), value, purpose)
	require.NoError(t, err)
	ok, err := f.svc.ConfirmContactVerification(t.Context(), value, f.dispatcher.LastCode(ticket.Contact.Value), purpose)
	require.NoError(t, err)
	require.True(t, ok)
}

func (f *fixture) register(t *testing.T, p auth.RegisterParams) *identity.User {
	t.Helper()
	target := p.Email
	if target == "" {
		target = p.Phone
	}
	f.verify(t, target, auth.PurposeRegistration)
	u, err := f.svc.Register(t.Context(), p)
	require.NoError(t, err)
	return u
}

func patient(email string) auth.RegisterParams {
	return auth.RegisterParams{
		Email:    email,
		Password: password,
		FullName: "Somchai Jaidee",
		Role:     "patient",
	}
}

func TestRequestContactVerification(t *testing.T) {
	t.Parallel()

	t.Run("email ticket", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ticket, err := f.svc.RequestContactVerification(t.Context(), " Alice@Example.com ", auth.PurposeRegistration)
		require.NoError(t, err)
		assert.Equal(t, "email", ticket.ContactMethod)
		assert.Equal(t, "ali***********com", ticket.MaskedTarget)
		assert.Equal(t, 5*time.Minute, ticket.ExpiresIn)
		assert.Len(t, f.dispatcher.LastCode("alice@example.com"), 6)
	})

	t.Run("phone ticket", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ticket, err := f.svc.RequestContactVerification(t.Context(), "081-234-5678", auth.PurposeLogin)
		require.NoError(t, err)
		assert.Equal(t, "sms", ticket.ContactMethod)
		assert.Equal(t, "+66812345678", ticket.Contact.Value)
	})

	t.Run("invalid contact", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.RequestContactVerification(t.Context(), "not a contact", auth.PurposeRegistration)
		assert.ErrorIs(t, err, auth.ErrInvalidContact)
	})

	t.Run("invalid purpose", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.RequestContactVerification(t.Context(), "a@example.com", auth.Purpose("party"))
		assert.ErrorIs(t, err, auth.ErrInvalidPurpose)
	})

	t.Run("dispatch failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		failing := &MockDispatcher{}
		failing.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, auth.PurposeRegistration).
			Return(errors.New("provider down")).Once()
		svc := auth.NewService(f.otp, f.users, failing)

		_, err := svc.RequestContactVerification(t.Context(), "a@example.com", auth.PurposeRegistration)
		assert.ErrorIs(t, err, auth.ErrDispatchFailed)
		failing.AssertExpectations(t)
	})

	t.Run("throttled per contact", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := ratelimiter.NewMemoryStore(
			ratelimiter.WithCleanupInterval(0),
			ratelimiter.WithStoreClock(f.clock.Now),
		)
		t.Cleanup(store.Close)
		limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
			Capacity:       2,
			RefillRate:     1,
			RefillInterval: time.Minute,
		}, ratelimiter.WithClock(f.clock.Now))
		require.NoError(t, err)
		svc := auth.NewService(f.otp, f.users, f.dispatcher, auth.WithRequestLimiter(limiter))

		_, err = svc.RequestContactVerification(t.Context(), "a@example.com", auth.PurposeLogin)
		require.NoError(t, err)
		_, err = svc.RequestContactVerification(t.Context(), "A@Example.com", auth.PurposeRegistration)
		require.NoError(t, err)

		_, err = svc.RequestContactVerification(t.Context(), "a@example.com", auth.PurposeLogin)
		require.ErrorIs(t, err, auth.ErrTooManyRequests)
		var rle *auth.RateLimitError
		require.ErrorAs(t, err, &rle)
		assert.Equal(t, time.Minute, rle.RetryAfter)

		_, err = svc.RequestContactVerification(t.Context(), "b@example.com", auth.PurposeLogin)
		assert.NoError(t, err, "other contacts have their own bucket")

		f.clock.Advance(time.Minute)
		_, err = svc.RequestContactVerification(t.Context(), "a@example.com", auth.PurposeLogin)
		assert.NoError(t, err)
	})
}

func TestConfirmContactVerification(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.RequestContactVerification(t.Context(), "a@example.com", auth.PurposeRegistration)
	require.NoError(t, err)

	ok, err := f.svc.ConfirmContactVerification(t.Context(), "a@example.com", "000000x", auth.PurposeRegistration)
	assert.False(t, ok)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
	assert.ErrorIs(t, err, otp.ErrCodeMismatch)

	ok, err = f.svc.ConfirmContactVerification(t.Context(), "b@example.com", "123456", auth.PurposeRegistration)
	assert.False(t, ok)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
	assert.ErrorIs(t, err, otp.ErrChallengeNotFound)

	ok, err = f.svc.ConfirmContactVerification(t.Context(), "a@example.com", f.dispatcher.LastCode("a@example.com"), auth.PurposeRegistration)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, f.otp.IsVerified("a@example.com"))

	_, err = f.svc.Register(t.Context(), patient("a@example.com"))
	require.NoError(t, err)
	assert.False(t, f.otp.IsVerified("a@example.com"))

	// Replaying the same code does not restore the consumed verification.
	ok, err = f.svc.ConfirmContactVerification(t.Context(), "a@example.com", f.dispatcher.LastCode("a@example.com"), auth.PurposeRegistration)
	assert.False(t, ok)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
	assert.ErrorIs(t, err, otp.ErrChallengeNotFound)
	assert.False(t, f.otp.IsVerified("a@example.com"))
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("requires a verified contact", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.svc.Register(t.Context(), patient("new@example.com"))
		assert.ErrorIs(t, err, auth.ErrContactNotVerified)

		exists, err := f.users.Exists(t.Context(), identity.FieldEmail, "new@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("verification is single use", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := f.register(t, patient("new@example.com"))

		assert.True(t, u.EmailVerified())
		assert.False(t, u.PhoneVerified())
		assert.False(t, f.otp.IsVerified("new@example.com"))

		_, err := f.svc.Register(t.Context(), patient("new@example.com"))
		assert.ErrorIs(t, err, auth.ErrContactNotVerified)
	})

	t.Run("stores sealed fields", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		dob := time.Date(1985, 4, 12, 0, 0, 0, 0, time.UTC)
		p := auth.RegisterParams{
			Email:          "doc@example.com",
			Phone:          "0812345678",
			Password:       password,
			FullName:       "Dr. Malee",
			Role:           "Doctor",
			CitizenID:      "1101700207030",
			MedicalLicense: "MD-12345",
			DateOfBirth:    dob,
			BloodType:      "ab+",
			HeightCM:       160,
			WeightKG:       55,
		}
		u := f.register(t, p)

		got, err := f.users.FindByMedicalLicense(t.Context(), "md-12345")
		require.NoError(t, err)
		assert.Equal(t, u.ID(), got.ID())
		assert.Equal(t, identity.RoleDoctor, got.Role())
		assert.Equal(t, "AB+", got.BloodType())

		phone, err := got.Phone()
		require.NoError(t, err)
		assert.Equal(t, "+66812345678", phone)
		gotDOB, err := got.DateOfBirth()
		require.NoError(t, err)
		assert.True(t, dob.Equal(gotDOB))
		assert.NoError(t, bcrypt.CompareHashAndPassword(got.PasswordDigest(), []byte(password)))
		assert.True(t, got.EmailVerified())
		assert.False(t, got.PhoneVerified())
	})

	t.Run("cleans free text", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		p := patient("clean@example.com")
		p.FullName = "  <b>Somchai</b> \t Jaidee\n"
		p.Gender = " Male "
		p.HeightCM = 172.46
		u := f.register(t, p)

		name, err := u.FullName()
		require.NoError(t, err)
		assert.Equal(t, "Somchai Jaidee", name)
		assert.Equal(t, "male", u.Gender())
		assert.InDelta(t, 172.5, u.HeightCM(), 1e-9)

		byName, err := f.users.Find(t.Context(), identity.FieldFullName, "Somchai Jaidee")
		require.NoError(t, err)
		assert.Len(t, byName, 1)
	})

	t.Run("phone only", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := f.register(t, auth.RegisterParams{
			Phone:    "+66899999999",
			Password: password,
			FullName: "Nok",
			Role:     "patient",
		})
		assert.True(t, u.PhoneVerified())
		assert.False(t, u.Has(identity.FieldEmail))
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.Register(t.Context(), auth.RegisterParams{
			Password:  "short",
			Role:      "doctor",
			CitizenID: "1101700207031",
			BloodType: "Z",
		})
		require.ErrorIs(t, err, validator.ErrValidationFailed)

		verrs := validator.ExtractValidationErrors(err)
		for _, field := range []string{"contact", "full_name", "password", "medical_license", "citizen_id", "blood_type"} {
			assert.True(t, verrs.Has(field), field)
		}
		assert.False(t, verrs.Has("role"))
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.register(t, patient("dup@example.com"))
		f.verify(t, "dup@example.com", auth.PurposeRegistration)

		_, err := f.svc.Register(t.Context(), patient("DUP@example.com"))
		assert.ErrorIs(t, err, auth.ErrAlreadyRegistered)
		var dup *identity.DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, identity.FieldEmail, dup.Field)
		// Nothing was persisted, so the verification is still usable.
		assert.True(t, f.otp.IsVerified("dup@example.com"))
	})

	t.Run("after register hook", func(t *testing.T) {
		t.Parallel()
		done := make(chan *identity.User, 1)
		f := newFixture(t, auth.WithAfterRegister(func(_ context.Context, u *identity.User) error {
			done <- u
			return errors.New("ignored")
		}))
		u := f.register(t, patient("hook@example.com"))

		select {
		case got := <-done:
			assert.Equal(t, u.ID(), got.ID())
		case <-time.After(2 * time.Second):
			t.Fatal("hook did not run")
		}
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("success by email and phone", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		p := patient("login@example.com")
		p.Phone = "0811111111"
		u := f.register(t, p)

		got, err := f.svc.Authenticate(t.Context(), "LOGIN@example.com", password)
		require.NoError(t, err)
		assert.Equal(t, u.ID(), got.ID())
		assert.Equal(t, f.clock.Now().UTC(), got.LastLoginAt())

		got, err = f.svc.Authenticate(t.Context(), "+66811111111", password)
		require.NoError(t, err)
		assert.Equal(t, u.ID(), got.ID())
	})

	t.Run("unknown identifier", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.Authenticate(t.Context(), "ghost@example.com", password)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		_, err = f.svc.Authenticate(t.Context(), "???", password)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("lockout after five failures", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := f.register(t, patient("lock@example.com"))

		for i := 1; i <= 4; i++ {
			_, err := f.svc.Authenticate(t.Context(), "lock@example.com", "wrong-password1")
			require.ErrorIs(t, err, auth.ErrInvalidCredentials, "attempt %d", i)
		}
		_, err := f.svc.Authenticate(t.Context(), "lock@example.com", "wrong-password1")
		require.ErrorIs(t, err, auth.ErrAccountLocked)

		// Locked even with the right password.
		_, err = f.svc.Authenticate(t.Context(), "lock@example.com", password)
		require.ErrorIs(t, err, auth.ErrAccountLocked)

		stored, err := f.users.GetByID(t.Context(), u.ID())
		require.NoError(t, err)
		assert.Equal(t, f.clock.Now().Add(30*time.Minute), stored.Lockout().LockedUntil)

		f.clock.Advance(30*time.Minute + time.Second)
		_, err = f.svc.Authenticate(t.Context(), "lock@example.com", password)
		require.NoError(t, err)

		stored, err = f.users.GetByID(t.Context(), u.ID())
		require.NoError(t, err)
		assert.Equal(t, lockout.State{}, stored.Lockout())
	})

	t.Run("concurrent failures are all counted", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := f.register(t, patient("race@example.com"))

		var wg sync.WaitGroup
		for range 3 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = f.svc.Authenticate(context.Background(), "race@example.com", "wrong-password1")
			}()
		}
		wg.Wait()

		stored, err := f.users.GetByID(t.Context(), u.ID())
		require.NoError(t, err)
		assert.Equal(t, uint8(3), stored.Lockout().FailedAttempts)
	})

	t.Run("disabled account", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := f.register(t, patient("off@example.com"))
		u.SetActive(false)
		require.NoError(t, f.users.Update(t.Context(), u))

		_, err := f.svc.Authenticate(t.Context(), "off@example.com", password)
		assert.ErrorIs(t, err, auth.ErrAccountDisabled)
	})
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.register(t, patient("reset@example.com"))
	for range 5 {
		_, _ = f.svc.Authenticate(t.Context(), "reset@example.com", "wrong-password1")
	}

	_, err := f.svc.RequestContactVerification(t.Context(), "reset@example.com", auth.PurposePasswordReset)
	require.NoError(t, err)

	_, err = f.svc.ResetPassword(t.Context(), "reset@example.com", "999999x", "another9secret")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	_, err = f.svc.ResetPassword(t.Context(), "reset@example.com", f.dispatcher.LastCode("reset@example.com"), "weak")
	assert.ErrorIs(t, err, validator.ErrValidationFailed)

	u, err := f.svc.ResetPassword(t.Context(), "reset@example.com", f.dispatcher.LastCode("reset@example.com"), "another9secret")
	require.NoError(t, err)
	assert.Equal(t, lockout.State{}, u.Lockout())
	assert.False(t, f.otp.IsVerified("reset@example.com"))

	_, err = f.svc.Authenticate(t.Context(), "reset@example.com", "another9secret")
	assert.NoError(t, err)

	// The code is spent by the first reset.
	_, err = f.svc.ResetPassword(t.Context(), "reset@example.com", f.dispatcher.LastCode("reset@example.com"), "intruder9secret")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
	assert.ErrorIs(t, err, otp.ErrChallengeNotFound)
	_, err = f.svc.Authenticate(t.Context(), "reset@example.com", "intruder9secret")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = f.svc.Authenticate(t.Context(), "reset@example.com", "another9secret")
	assert.NoError(t, err)

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.RequestContactVerification(t.Context(), "ghost@example.com", auth.PurposePasswordReset)
		require.NoError(t, err)
		_, err = f.svc.ResetPassword(t.Context(), "ghost@example.com", f.dispatcher.LastCode("ghost@example.com"), "another9secret")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	u := f.register(t, patient("change@example.com"))

	err := f.svc.ChangePassword(t.Context(), u.ID(), "not-it-123", "another9secret")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, f.svc.ChangePassword(t.Context(), u.ID(), password, "another9secret"))
	_, err = f.svc.Authenticate(t.Context(), "change@example.com", password)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = f.svc.Authenticate(t.Context(), "change@example.com", "another9secret")
	assert.NoError(t, err)
}

func TestUpdateContact(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	u := f.register(t, patient("update@example.com"))
	other := f.register(t, patient("other@example.com"))

	_, err := f.svc.UpdateContact(t.Context(), u.ID(), "0822222222")
	assert.ErrorIs(t, err, auth.ErrContactNotVerified)

	f.verify(t, "0822222222", auth.PurposePhoneVerification)
	got, err := f.svc.UpdateContact(t.Context(), u.ID(), "0822222222")
	require.NoError(t, err)
	assert.True(t, got.PhoneVerified())
	phone, err := got.Phone()
	require.NoError(t, err)
	assert.Equal(t, "+66822222222", phone)
	assert.False(t, f.otp.IsVerified("+66822222222"))

	f.verify(t, "other@example.com", auth.PurposeEmailVerification)
	_, err = f.svc.UpdateContact(t.Context(), u.ID(), "other@example.com")
	assert.ErrorIs(t, err, auth.ErrAlreadyRegistered)

	// Re-verifying the address a user already holds is allowed.
	_, err = f.svc.UpdateContact(t.Context(), other.ID(), "other@example.com")
	assert.NoError(t, err)
}
