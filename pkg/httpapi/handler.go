package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bpmonitor/idvault/pkg/auth"
	"github.com/bpmonitor/idvault/pkg/identity"
	"github.com/bpmonitor/idvault/pkg/logger"
	"github.com/bpmonitor/idvault/pkg/validator"
)

// Gates is the part of *auth.Service the handlers call.
type Gates interface {
	RequestContactVerification(ctx context.Context, raw string, purpose auth.Purpose) (*auth.VerificationTicket, error)
	ConfirmContactVerification(ctx context.Context, raw, code string, purpose auth.Purpose) (bool, error)
	Register(ctx context.Context, p auth.RegisterParams) (*identity.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*identity.User, error)
	ResetPassword(ctx context.Context, raw, code, newPassword string) (*identity.User, error)
}

var _ Gates = (*auth.Service)(nil)

type Handler struct {
	gates     Gates
	otpDigits int
	logger    *slog.Logger
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithOTPDigits sets the code length accepted by verify and reset.
func WithOTPDigits(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.otpDigits = n
		}
	}
}

func NewHandler(gates Gates, opts ...Option) *Handler {
	h := &Handler{gates: gates, otpDigits: 6, logger: logger.Discard()}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("httpapi"))
	return h
}

// Handle returns the /auth routes.
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/request-otp", h.requestOTP)
	r.Post("/verify-otp", h.verifyOTP)
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/reset-password", h.resetPassword)
	return r
}

type RequestOTPRequest struct {
	Contact string `json:"contact"`
	Purpose string `json:"purpose"`
}

type RequestOTPResponse struct {
	ContactMethod string    `json:"contact_method"`
	MaskedTarget  string    `json:"masked_target"`
	Purpose       string    `json:"purpose"`
	ExpiresIn     int       `json:"expires_in"`
	ExpiresAt     time.Time `json:"expires_at"`
}

func (h *Handler) requestOTP(w http.ResponseWriter, r *http.Request) {
	var req RequestOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := validator.Apply(validator.Required("contact", req.Contact)); err != nil {
		h.writeError(w, r, err)
		return
	}
	purpose, err := auth.ParsePurpose(req.Purpose)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ticket, err := h.gates.RequestContactVerification(r.Context(), req.Contact, purpose)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, r, http.StatusOK, "verification code sent", RequestOTPResponse{
		ContactMethod: ticket.ContactMethod,
		MaskedTarget:  ticket.MaskedTarget,
		Purpose:       ticket.Purpose.String(),
		ExpiresIn:     int(ticket.ExpiresIn / time.Second),
		ExpiresAt:     ticket.ExpiresAt.UTC(),
	})
}

type VerifyOTPRequest struct {
	Contact string `json:"contact"`
	OTP     string `json:"otp"`
	Purpose string `json:"purpose"`
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.OTP = strings.TrimSpace(req.OTP)
	if err := validator.Apply(
		validator.Required("contact", req.Contact),
		validator.ValidOTP("otp", req.OTP, h.otpDigits),
	); err != nil {
		h.writeError(w, r, err)
		return
	}
	purpose, err := auth.ParsePurpose(req.Purpose)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	verified, err := h.gates.ConfirmContactVerification(r.Context(), req.Contact, req.OTP, purpose)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, r, http.StatusOK, "contact verified", map[string]any{
		"verified": verified,
		"purpose":  purpose.String(),
	})
}

type RegisterRequest struct {
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Password       string  `json:"password"`
	FullName       string  `json:"full_name"`
	Role           string  `json:"role"`
	CitizenID      string  `json:"citizen_id"`
	MedicalLicense string  `json:"medical_license"`
	DateOfBirth    string  `json:"date_of_birth"`
	Gender         string  `json:"gender"`
	BloodType      string  `json:"blood_type"`
	Height         float64 `json:"height"`
	Weight         float64 `json:"weight"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var dob time.Time
	if s := strings.TrimSpace(req.DateOfBirth); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			h.writeError(w, r, validator.ValidationErrors{{
				Field:          "date_of_birth",
				Message:        "must be a date in YYYY-MM-DD format",
				TranslationKey: "validation.date",
			}})
			return
		}
		dob = t
	}

	user, err := h.gates.Register(r.Context(), auth.RegisterParams{
		Email:          req.Email,
		Phone:          req.Phone,
		Password:       req.Password,
		FullName:       req.FullName,
		Role:           req.Role,
		CitizenID:      req.CitizenID,
		MedicalLicense: req.MedicalLicense,
		DateOfBirth:    dob,
		Gender:         req.Gender,
		BloodType:      req.BloodType,
		HeightCM:       req.Height,
		WeightKG:       req.Weight,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := newUserView(user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, "registration successful", view)
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := validator.Apply(
		validator.Required("identifier", req.Identifier),
		validator.Required("password", req.Password),
	); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.gates.Authenticate(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := newUserView(user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, "login successful", view)
}

type ResetPasswordRequest struct {
	Contact     string `json:"contact"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.OTP = strings.TrimSpace(req.OTP)
	if err := validator.Apply(
		validator.Required("contact", req.Contact),
		validator.ValidOTP("otp", req.OTP, h.otpDigits),
	); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.gates.ResetPassword(r.Context(), req.Contact, req.OTP, req.NewPassword)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, r, http.StatusOK, "password has been reset", map[string]any{
		"user_id": user.ID().String(),
	})
}
