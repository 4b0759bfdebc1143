// Package totp generates and checks time-windowed one-time codes.
//
// It implements RFC 4226 HOTP with the RFC 6238 time step, but unlike an
// authenticator-app integration both the digit count and the window length are
// parameters: the identity vault uses a window equal to the challenge TTL so
// that the window itself is the expiry.
//
// # Usage
//
//	g, err := totp.New(seed, totp.Params{Digits: 6, Period: 5 * time.Minute})
//	if err != nil {
//	    // handle error
//	}
//	code := g.At(time.Now())
//	ok := g.Verify(code, time.Now(), 1) // accept the adjacent windows too
//
// Verification compares in constant time and rejects codes whose length or
// alphabet does not match the generator before doing any HMAC work.
//
// # See Also
//
//   - RFC 4226 - HMAC-Based One-Time Password (HOTP) Algorithm
//   - RFC 6238 - Time-Based One-Time Password (TOTP) Algorithm
package totp
