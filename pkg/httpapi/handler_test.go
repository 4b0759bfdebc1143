package httpapi_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bpmonitor/idvault/pkg/auth"
	"github.com/bpmonitor/idvault/pkg/contact"
	"github.com/bpmonitor/idvault/pkg/fieldcrypt"
	"github.com/bpmonitor/idvault/pkg/httpapi"
	"github.com/bpmonitor/idvault/pkg/identity"
	"github.com/bpmonitor/idvault/pkg/otp"
	"github.com/bpmonitor/idvault/pkg/validator"
)

type envelope struct {
	Status    string              `json:"status"`
	Message   string              `json:"message"`
	Data      map[string]any      `json:"data"`
	Errors    map[string][]string `json:"errors"`
	RequestID string              `json:"request_id"`
}

func do(t *testing.T, h http.Handler, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func newRouter(gates httpapi.Gates) http.Handler {
	return httpapi.Router(httpapi.RouterOptions{Auth: httpapi.NewHandler(gates)})
}

func TestRequestOTP(t *testing.T) {
	t.Parallel()

	gates := &MockGates{}
	expires := time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC)
	gates.On("RequestContactVerification", mock.Anything, "a@example.com", auth.PurposeRegistration).Return(&auth.VerificationTicket{
		Contact:       contact.MustParse("a@example.com"),
		ContactMethod: "email",
		MaskedTarget:  "a@e*******com",
		ExpiresIn:     5 * time.Minute,
		ExpiresAt:     expires,
		Purpose:       auth.PurposeRegistration,
	}, nil).Once()

	rec, env := do(t, newRouter(gates), "/auth/request-otp", `{"contact":"a@example.com"}`, httpapi.RequestIDHeader, "req-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "req-1", env.RequestID)
	assert.Equal(t, "req-1", rec.Header().Get(httpapi.RequestIDHeader))
	assert.Equal(t, "email", env.Data["contact_method"])
	assert.Equal(t, float64(300), env.Data["expires_in"])
	assert.Equal(t, "registration", env.Data["purpose"])
	gates.AssertExpectations(t)
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", validator.ValidationErrors{{Field: "password", Message: "too weak"}}, http.StatusUnprocessableEntity, "validation failed"},
		{"not verified", auth.ErrContactNotVerified, http.StatusBadRequest, "contact has not been verified"},
		{"bad code", errors.Join(auth.ErrInvalidCode, otp.ErrCodeMismatch), http.StatusBadRequest, "invalid verification code"},
		{"expired code", errors.Join(auth.ErrInvalidCode, otp.ErrChallengeExpired), http.StatusBadRequest, "verification code expired"},
		{"credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"disabled", auth.ErrAccountDisabled, http.StatusForbidden, "account is disabled"},
		{"locked", auth.ErrAccountLocked, http.StatusLocked, "account is temporarily locked"},
		{"duplicate", errors.Join(auth.ErrAlreadyRegistered, &identity.DuplicateError{Field: identity.FieldEmail}), http.StatusConflict, "already registered"},
		{"throttled", &auth.RateLimitError{RetryAfter: time.Minute}, http.StatusTooManyRequests, "too many requests, try again later"},
		{"dispatch", errors.Join(auth.ErrDispatchFailed, errors.New("smtp")), http.StatusInternalServerError, "failed to send verification code"},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gates := &MockGates{}
			gates.On("Authenticate", mock.Anything, "a@example.com", "pw").Return(nil, tt.err).Once()

			rec, env := do(t, newRouter(gates), "/auth/login", `{"identifier":"a@example.com","password":"pw"}`)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tt.message, env.Message)
			assert.NotEmpty(t, env.RequestID)
		})
	}
}

func TestDecryptionFailureIsRaised(t *testing.T) {
	t.Parallel()

	store := identity.NewMemoryStore()
	sealer, err := fieldcrypt.New(bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 32))
	require.NoError(t, err)
	reader, err := fieldcrypt.New(bytes.Repeat([]byte{3}, 32), bytes.Repeat([]byte{2}, 32))
	require.NoError(t, err)

	u, err := identity.NewDirectory(store, sealer).NewUser(identity.RolePatient)
	require.NoError(t, err)
	require.NoError(t, u.SetEmail("a@example.com"))
	require.NoError(t, store.Create(t.Context(), u))
	loaded, err := identity.NewDirectory(store, reader).GetByID(t.Context(), u.ID())
	require.NoError(t, err)

	gates := &MockGates{}
	gates.On("Authenticate", mock.Anything, "a@example.com", "pw").Return(loaded, nil).Once()

	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	router := httpapi.Router(httpapi.RouterOptions{Auth: httpapi.NewHandler(gates, httpapi.WithLogger(log))})

	rec, env := do(t, router, "/auth/login", `{"identifier":"a@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", env.Message)
	assert.NotContains(t, rec.Body.String(), "a@example.com")

	var entry map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n")) {
		var e map[string]any
		require.NoError(t, json.Unmarshal(line, &e), string(line))
		if e["msg"] == "sealed field failed to decrypt" {
			entry = e
		}
	}
	require.NotNil(t, entry, logs.String())
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "sealed field failed to decrypt", entry["msg"])
	assert.Equal(t, "data_integrity", entry["event"])
	assert.Equal(t, u.ID().String(), entry["user_id"])
	assert.Equal(t, "email", entry["field"])
}

func TestDuplicateReportsField(t *testing.T) {
	t.Parallel()

	gates := &MockGates{}
	gates.On("Register", mock.Anything, mock.Anything).
		Return(nil, errors.Join(auth.ErrAlreadyRegistered, &identity.DuplicateError{Field: identity.FieldCitizenID})).Once()

	rec, env := do(t, newRouter(gates), "/auth/register", `{"email":"a@example.com","password":"x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, env.Errors, "citizen_id")
}

func TestRequestValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  string
		body  string
		code  int
		field string
	}{
		{"missing contact", "/auth/request-otp", `{}`, http.StatusUnprocessableEntity, "contact"},
		{"unknown purpose", "/auth/request-otp", `{"contact":"a@example.com","purpose":"party"}`, http.StatusUnprocessableEntity, "purpose"},
		{"short otp", "/auth/verify-otp", `{"contact":"a@example.com","otp":"12"}`, http.StatusUnprocessableEntity, "otp"},
		{"bad date", "/auth/register", `{"email":"a@example.com","date_of_birth":"12/04/1985"}`, http.StatusUnprocessableEntity, "date_of_birth"},
		{"missing password", "/auth/login", `{"identifier":"a@example.com"}`, http.StatusUnprocessableEntity, "password"},
		{"reset otp letters", "/auth/reset-password", `{"contact":"a@example.com","otp":"abcdef"}`, http.StatusUnprocessableEntity, "otp"},
		{"unknown field", "/auth/login", `{"identifier":"a","password":"b","admin":true}`, http.StatusBadRequest, ""},
		{"malformed", "/auth/login", `{"identifier":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gates := &MockGates{}
			rec, env := do(t, newRouter(gates), tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			if tt.field != "" {
				assert.Contains(t, env.Errors, tt.field)
			}
			gates.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
			gates.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

func TestUnsupportedMediaType(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("identifier=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	newRouter(&MockGates{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	gates := &MockGates{}
	gates.On("Authenticate", mock.Anything, mock.Anything, mock.Anything).Return(nil, auth.ErrInvalidCredentials)

	rec, env := do(t, newRouter(gates), "/auth/login", `{"identifier":"a","password":"b"}`, httpapi.RequestIDHeader, "bad id with spaces")
	assert.NotEqual(t, "bad id with spaces", env.RequestID)
	assert.Len(t, env.RequestID, 36)
	assert.Equal(t, env.RequestID, rec.Header().Get(httpapi.RequestIDHeader))
}
