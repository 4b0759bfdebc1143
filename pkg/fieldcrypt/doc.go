// Package fieldcrypt seals identifying attributes for storage.
//
// Every sealed field is a pair: an AES-256-GCM ciphertext that only the
// service can open, and a keyed HMAC-SHA256 lookup hash over the normalized
// plaintext that supports equality search without decryption.
//
//	codec, _ := fieldcrypt.FromKeyring(ring)
//	sealed, _ := codec.Seal(fieldcrypt.Spec{Domain: "email", Normalize: fieldcrypt.NormalizeEmail}, "Bob@X.com")
//	plain, _ := codec.Open(sealed)
//
// Ciphertexts are non-deterministic; lookup hashes are deterministic for a
// given key, domain and normalized value. The domain keeps equal values in
// different columns from producing equal hashes.
package fieldcrypt
