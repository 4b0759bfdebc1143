// Package otp issues and verifies short-lived one-time codes that prove a
// user controls an email address or phone number.
//
// A Service keeps at most one live challenge per normalized contact. A code
// verifies for the configured TTL after issue; a successful verification
// marks the contact as verified for VerifiedTTL, and registration or contact
// updates consume that mark exactly once. All state is in memory and guarded
// by a single mutex; a background reaper removes expired entries.
//
//	svc, _ := otp.NewService(seedKey, otp.Config{}, otp.WithLogger(log))
//	svc.Start(ctx)
//	defer svc.Close()
//
//	code, _ := svc.RequestCode("bob@example.com")
//	// deliver code.Value out of band
//	err := svc.VerifyCode("Bob@Example.com", "123456")
//
// Delivery is not part of this package. RequestCode only returns the code.
package otp
