package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bpmonitor/idvault/pkg/auth"
	"github.com/bpmonitor/idvault/pkg/fieldcrypt"
	"github.com/bpmonitor/idvault/pkg/identity"
	"github.com/bpmonitor/idvault/pkg/logger"
	"github.com/bpmonitor/idvault/pkg/otp"
	"github.com/bpmonitor/idvault/pkg/validator"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the body of every response.
type Envelope struct {
	Status    string              `json:"status"`
	Message   string              `json:"message"`
	Data      any                 `json:"data,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, env Envelope) {
	env.RequestID = RequestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(env)
}

func writeSuccess(w http.ResponseWriter, r *http.Request, code int, message string, data any) {
	writeJSON(w, r, code, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

// apiError is an error resolved to its HTTP form.
type apiError struct {
	code    int
	message string
	fields  map[string][]string
}

func classify(err error) apiError {
	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
		return apiError{http.StatusUnprocessableEntity, "validation failed", verrs.Map()}
	}

	var dup *identity.DuplicateError
	switch {
	case errors.Is(err, ErrUnsupportedMediaType):
		return apiError{http.StatusUnsupportedMediaType, "content type must be application/json", nil}
	case errors.Is(err, ErrBodyTooLarge):
		return apiError{http.StatusRequestEntityTooLarge, "request body too large", nil}
	case errors.Is(err, ErrInvalidBody):
		return apiError{http.StatusBadRequest, "malformed request body", nil}
	case errors.Is(err, auth.ErrInvalidContact):
		return apiError{http.StatusUnprocessableEntity, "validation failed", map[string][]string{
			"contact": {"must be a valid email address or phone number"},
		}}
	case errors.Is(err, auth.ErrInvalidPurpose):
		return apiError{http.StatusUnprocessableEntity, "validation failed", map[string][]string{
			"purpose": {"is not a known purpose"},
		}}
	case errors.Is(err, auth.ErrInvalidCode):
		switch {
		case errors.Is(err, otp.ErrChallengeExpired):
			return apiError{http.StatusBadRequest, "verification code expired", nil}
		case errors.Is(err, otp.ErrChallengeNotFound):
			return apiError{http.StatusBadRequest, "no active verification code for this contact", nil}
		}
		return apiError{http.StatusBadRequest, "invalid verification code", nil}
	case errors.Is(err, auth.ErrContactNotVerified):
		return apiError{http.StatusBadRequest, "contact has not been verified", nil}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, "invalid credentials", nil}
	case errors.Is(err, auth.ErrAccountDisabled):
		return apiError{http.StatusForbidden, "account is disabled", nil}
	case errors.Is(err, auth.ErrAccountLocked):
		return apiError{http.StatusLocked, "account is temporarily locked", nil}
	case errors.Is(err, auth.ErrAlreadyRegistered) && errors.As(err, &dup):
		return apiError{http.StatusConflict, "already registered", map[string][]string{
			dup.Field.String(): {"is already registered"},
		}}
	case errors.Is(err, auth.ErrAlreadyRegistered):
		return apiError{http.StatusConflict, "already registered", nil}
	case errors.Is(err, auth.ErrTooManyRequests):
		return apiError{http.StatusTooManyRequests, "too many requests, try again later", nil}
	case errors.Is(err, auth.ErrDispatchFailed):
		return apiError{http.StatusInternalServerError, "failed to send verification code", nil}
	case errors.Is(err, fieldcrypt.ErrDecryption):
		return apiError{http.StatusInternalServerError, "internal server error", nil}
	}
	return apiError{http.StatusInternalServerError, "internal server error", nil}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	switch {
	case errors.Is(err, fieldcrypt.ErrDecryption):
		h.logDecryptionFailure(r, err)
	case e.code >= http.StatusInternalServerError:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	var rle *auth.RateLimitError
	if errors.As(err, &rle) {
		setRetryAfter(w, rle.RetryAfter)
	}
	writeJSON(w, r, e.code, Envelope{Status: StatusError, Message: e.message, Errors: e.fields})
}

// logDecryptionFailure raises a stored ciphertext that no longer opens under
// the current keys: tampering, corruption or a rotated key.
func (h *Handler) logDecryptionFailure(r *http.Request, err error) {
	attrs := []any{
		slog.String("event", "data_integrity"),
		slog.String("path", r.URL.Path),
		logger.Error(err),
	}
	var ferr *identity.FieldError
	if errors.As(err, &ferr) {
		attrs = append(attrs, logger.UserID(ferr.UserID.String()), slog.String("field", ferr.Field.String()))
	}
	h.logger.ErrorContext(r.Context(), "sealed field failed to decrypt", attrs...)
}

// setRetryAfter writes the header in whole seconds, rounded up.
func setRetryAfter(w http.ResponseWriter, d time.Duration) {
	secs := int((d + time.Second - 1) / time.Second)
	w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
}
