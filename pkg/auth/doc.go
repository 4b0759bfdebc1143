// Package auth orchestrates contact verification, registration and login.
//
// The gates compose four collaborators:
//
//   - Challenges (an *otp.Service) issues and checks one-time codes and keeps
//     the verified-contact set.
//   - *identity.Directory stores users and finds them by lookup hash.
//   - Dispatcher delivers codes. The service never picks a transport itself.
//   - *lockout.Policy counts failed logins and locks accounts.
//
// # Registration
//
// A contact must be verified before Register accepts it:
//
//	ticket, err := svc.RequestContactVerification(ctx, "user@x.com", auth.PurposeRegistration)
//	ok, err := svc.ConfirmContactVerification(ctx, "user@x.com", code, auth.PurposeRegistration)
//	user, err := svc.Register(ctx, auth.RegisterParams{Email: "user@x.com", ...})
//
// Register consumes the verification right before the user is persisted and
// gives it back if persistence fails, so one verification creates at most one
// account.
//
// # Login
//
// Authenticate resolves the identifier through lookup hashes only. Unknown
// identifiers and wrong passwords both return ErrInvalidCredentials. A locked
// account fails with ErrAccountLocked before the password is compared.
//
// # Hooks
//
// WithAfterRegister and WithAfterLogin run in their own goroutine with a
// ten second timeout. Their errors and panics are logged and never reach the
// caller.
package auth
