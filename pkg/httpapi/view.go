package httpapi

import (
	"errors"
	"time"

	"github.com/bpmonitor/idvault/pkg/identity"
)

// UserView is the public shape of a user. Citizen id, license and date of
// birth are never returned.
type UserView struct {
	ID            string     `json:"id"`
	Role          string     `json:"role"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	FullName      string     `json:"full_name,omitempty"`
	EmailVerified bool       `json:"is_email_verified"`
	PhoneVerified bool       `json:"is_phone_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

func newUserView(u *identity.User) (UserView, error) {
	email, emailErr := u.Email()
	phone, phoneErr := u.Phone()
	name, nameErr := u.FullName()
	if err := errors.Join(emailErr, phoneErr, nameErr); err != nil {
		return UserView{}, err
	}

	v := UserView{
		ID:            u.ID().String(),
		Role:          u.Role().String(),
		Email:         email,
		Phone:         phone,
		FullName:      name,
		EmailVerified: u.EmailVerified(),
		PhoneVerified: u.PhoneVerified(),
		CreatedAt:     u.CreatedAt(),
	}
	if t := u.LastLoginAt(); !t.IsZero() {
		v.LastLoginAt = &t
	}
	return v, nil
}
