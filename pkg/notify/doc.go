// Package notify delivers one-time codes to users.
//
// A Router implements auth.Dispatcher and picks a Channel by contact kind:
// email addresses go to an EmailChannel backed by Postmark, phone numbers to
// an SMSChannel that posts JSON to an HTTP gateway. LogChannel writes the
// message to a slog.Logger and stands in for either one during development.
//
//	router, err := notify.NewFromConfig(cfg, notify.WithLogger(log), notify.WithCodeTTL(5*time.Minute))
//	if err != nil {
//	    return err
//	}
//	authSvc := auth.NewService(otpSvc, users, router)
//
// NewFromConfig falls back to LogChannel for any channel whose credentials
// are missing.
package notify
