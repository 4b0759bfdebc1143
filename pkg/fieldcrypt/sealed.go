package fieldcrypt

import "strings"

// Spec describes how one field is hashed.
type Spec struct {
	Domain    string
	Normalize Normalizer
}

// Sealed is the persisted form of one field. Ciphertext and LookupHash are
// always written together; both are nil when the field is absent.
type Sealed struct {
	Ciphertext []byte
	LookupHash []byte
}

func (s Sealed) IsZero() bool {
	return len(s.Ciphertext) == 0
}

// Seal encrypts plaintext and computes its lookup hash in one step.
// Plaintext that is blank after trimming yields ErrEmptyPlaintext.
func (c *Codec) Seal(spec Spec, plaintext string) (Sealed, error) {
	plaintext = strings.TrimSpace(plaintext)
	ct, err := c.Encrypt(plaintext)
	if err != nil {
		return Sealed{}, err
	}
	return Sealed{
		Ciphertext: ct,
		LookupHash: c.LookupHash(spec.Domain, plaintext, spec.Normalize),
	}, nil
}

// Open decrypts a sealed field. An absent field opens to "".
func (c *Codec) Open(s Sealed) (string, error) {
	if s.IsZero() {
		return "", nil
	}
	return c.Decrypt(s.Ciphertext)
}
