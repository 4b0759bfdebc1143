package notify

import (
	"fmt"
	"html"
	"time"

	"github.com/bpmonitor/idvault/pkg/auth"
	"github.com/bpmonitor/idvault/pkg/contact"
)

// Message is a rendered code notification.
type Message struct {
	To      contact.Contact
	Purpose auth.Purpose
	Code    string
	Subject string
	Text    string
	HTML    string
}

func (m Message) validate() error {
	if m.To.IsZero() || m.Code == "" || m.Text == "" {
		return ErrInvalidMessage
	}
	return nil
}

var subjects = map[auth.Purpose]string{
	auth.PurposeRegistration:      "Confirm your registration",
	auth.PurposeLogin:             "Your sign-in code",
	auth.PurposePasswordReset:     "Reset your password",
	auth.PurposePhoneVerification: "Verify your phone number",
	auth.PurposeEmailVerification: "Verify your email address",
}

// Subject returns the email subject used for purpose.
func Subject(purpose auth.Purpose) string {
	if s, ok := subjects[purpose]; ok {
		return s
	}
	return "Your verification code"
}

func render(to contact.Contact, code string, purpose auth.Purpose, ttl time.Duration) Message {
	text := fmt.Sprintf("Your verification code is %s.", code)
	if ttl > 0 {
		text += fmt.Sprintf(" It expires in %d minutes.", int(ttl.Round(time.Minute)/time.Minute))
	}
	text += " Do not share it with anyone."

	return Message{
		To:      to,
		Purpose: purpose,
		Code:    code,
		Subject: Subject(purpose),
		Text:    text,
		HTML:    "<p>" + html.EscapeString(text) + "</p>",
	}
}
