// Package secrets holds the process-wide key material of the identity vault
// and derives every purpose-specific key from it.
//
// A single 32-byte master key (IDVAULT_MASTER_KEY, base64) is expanded with
// HKDF-SHA-256 into independent subkeys, one per Purpose. Field encryption,
// lookup hashing and one-time-code seeding therefore never share key bytes
// even though they share one configured secret.
//
// # Usage
//
//	master, err := secrets.ParseKey(cfg.MasterKey)
//	if err != nil {
//	    // handle error
//	}
//	ring, err := secrets.NewKeyring(master)
//	if err != nil {
//	    // handle error
//	}
//	seedKey, _ := ring.Derive(secrets.PurposeOTPSeed)
//	seed := secrets.DeriveSeed(seedKey, "user@example.com")
//
// DeriveSeed is a keyed HMAC, not a bare hash: knowing the contact and the
// derivation scheme is not enough to reproduce a seed without the server key.
//
// # Error Handling
//
// Errors wrap the package sentinels ErrInvalidKey and ErrKeyDerivationFailed
// and can be matched with errors.Is.
package secrets
