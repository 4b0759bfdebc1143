package fieldcrypt

import "errors"

var (
	ErrInvalidKey     = errors.New("fieldcrypt: key must be 32 bytes")
	ErrEmptyPlaintext = errors.New("fieldcrypt: empty plaintext")
	ErrDecryption     = errors.New("fieldcrypt: decryption failed")

	errCiphertextTooShort = errors.New("ciphertext too short")
	errUnknownVersion     = errors.New("unknown ciphertext version")
)
