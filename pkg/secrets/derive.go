package secrets

import (
	"crypto/hmac"
	"crypto/sha256"
)

// DeriveSeed computes the per-contact OTP seed as HMAC-SHA256(key, contact).
// contact must already be normalized; callers own normalization so that the
// same address always maps to the same seed.
func DeriveSeed(key []byte, contact string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(contact))
	return mac.Sum(nil)
}
