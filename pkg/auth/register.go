package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bpmonitor/idvault/pkg/audit"
	"github.com/bpmonitor/idvault/pkg/contact"
	"github.com/bpmonitor/idvault/pkg/identity"
	"github.com/bpmonitor/idvault/pkg/logger"
	"github.com/bpmonitor/idvault/pkg/sanitizer"
	"github.com/bpmonitor/idvault/pkg/validator"
)

// RegisterParams is the registration form. Either Email or Phone is required;
// the one that was verified is Email when both are given.
type RegisterParams struct {
	Email          string
	Phone          string
	Password       string
	FullName       string
	Role           string
	CitizenID      string
	MedicalLicense string
	DateOfBirth    time.Time
	Gender         string
	BloodType      string
	HeightCM       float64
	WeightKG       float64
}

var bloodTypes = []string{"A", "B", "AB", "O", "A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// Register creates a user for a contact verified beforehand with
// ConfirmContactVerification.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*identity.User, error) {
	p.Email = contact.NormalizeEmail(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.FullName = sanitizer.PersonName(p.FullName)
	p.CitizenID = sanitizer.Identifier(p.CitizenID)
	p.MedicalLicense = sanitizer.Identifier(p.MedicalLicense)
	p.BloodType = sanitizer.Code(p.BloodType)
	p.Gender = sanitizer.Keyword(p.Gender)
	p.HeightCM = sanitizer.Measurement(p.HeightCM)
	p.WeightKG = sanitizer.Measurement(p.WeightKG)

	var phone contact.Contact
	if p.Phone != "" {
		if c, err := s.challenges.ParseContact(p.Phone); err == nil && c.Kind == contact.KindPhone {
			phone = c
		}
	}

	role, _ := identity.ParseRole(p.Role)
	if err := validator.Apply(append([]validator.Rule{
		validator.AtLeastOne("contact", p.Email, p.Phone),
		validator.When(p.Email != "", validator.ValidEmail("email", p.Email)),
		validator.When(p.Phone != "", validator.ValidE164("phone", phone.Value)),
		validator.Required("full_name", p.FullName),
		validator.MaxLen("full_name", p.FullName, 200),
		validator.OneOf("role", role.String(), identity.RolePatient.String(), identity.RoleDoctor.String()),
		validator.When(role == identity.RoleDoctor, validator.Required("medical_license", p.MedicalLicense)),
		validator.When(p.MedicalLicense != "", validator.ValidMedicalLicense("medical_license", p.MedicalLicense)),
		validator.When(p.CitizenID != "", validator.ValidCitizenID("citizen_id", p.CitizenID)),
		validator.When(p.BloodType != "", validator.OneOf("blood_type", p.BloodType, bloodTypes...)),
		validator.When(p.HeightCM != 0, validator.Range("height", p.HeightCM, 30, 280)),
		validator.When(p.WeightKG != 0, validator.Range("weight", p.WeightKG, 1, 500)),
	}, passwordRules("password", p.Password, s.passwordStrength)...)...); err != nil {
		return nil, err
	}

	target := p.Email
	if target == "" {
		target = phone.Value
	}
	if !s.challenges.IsVerified(target) {
		return nil, ErrContactNotVerified
	}

	unique := []struct {
		field identity.Field
		value string
	}{
		{identity.FieldEmail, p.Email},
		{identity.FieldPhone, phone.Value},
		{identity.FieldCitizenID, p.CitizenID},
		{identity.FieldMedicalLicense, p.MedicalLicense},
	}
	for _, u := range unique {
		if u.value == "" {
			continue
		}
		exists, err := s.users.Exists(ctx, u.field, u.value)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if exists {
			return nil, errors.Join(ErrAlreadyRegistered, &identity.DuplicateError{Field: u.field})
		}
	}

	digest, err := s.hashPassword(p.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.NewUser(role)
	if err != nil {
		return nil, err
	}
	if err := errors.Join(
		user.SetEmail(p.Email),
		user.SetPhone(phone.Value),
		user.SetFullName(p.FullName),
		user.SetCitizenID(p.CitizenID),
		user.SetMedicalLicense(p.MedicalLicense),
		user.SetDateOfBirth(p.DateOfBirth),
	); err != nil {
		return nil, fmt.Errorf("failed to seal identity fields: %w", err)
	}
	user.SetGender(p.Gender)
	user.SetBloodType(p.BloodType)
	user.SetHeightCM(p.HeightCM)
	user.SetWeightKG(p.WeightKG)
	user.SetPasswordDigest(digest)
	user.SetEmailVerified(p.Email != "" && target == p.Email)
	user.SetPhoneVerified(phone.Value != "" && target == phone.Value)

	if !s.challenges.ConsumeVerification(target) {
		return nil, ErrContactNotVerified
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.challenges.Reinstate(target)
		if errors.Is(err, identity.ErrDuplicate) {
			return nil, errors.Join(ErrAlreadyRegistered, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(user.ID().String()),
		logger.Role(role.String()),
		logger.Contact(target),
	)
	s.audit(ctx, audit.ActionUserRegistered, audit.ResultSuccess,
		userRef(user),
		audit.WithMetadata("role", role.String()),
	)
	s.runHook("afterRegister", s.afterRegister, user)

	return user, nil
}
