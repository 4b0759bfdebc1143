package fieldcrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"github.com/bpmonitor/idvault/pkg/secrets"
)

// KeySize is the required size of both the encryption and the lookup key.
const KeySize = 32

// version1 prefixes every ciphertext: version(1) || nonce(12) || sealed data + tag(16).
const version1 byte = 1

// Codec encrypts, decrypts and hashes field values. Safe for concurrent use.
type Codec struct {
	aead      cipher.AEAD
	lookupKey []byte
}

// New builds a Codec. The two keys must differ.
func New(encKey, lookupKey []byte) (*Codec, error) {
	if len(encKey) != KeySize || len(lookupKey) != KeySize {
		return nil, ErrInvalidKey
	}
	if bytes.Equal(encKey, lookupKey) {
		return nil, errors.Join(ErrInvalidKey, errors.New("encryption and lookup keys must be distinct"))
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}

	lk := make([]byte, KeySize)
	copy(lk, lookupKey)
	return &Codec{aead: aead, lookupKey: lk}, nil
}

// FromKeyring builds a Codec from the field encryption and field lookup subkeys.
func FromKeyring(ring *secrets.Keyring) (*Codec, error) {
	encKey, err := ring.Derive(secrets.PurposeFieldEncryption)
	if err != nil {
		return nil, err
	}
	lookupKey, err := ring.Derive(secrets.PurposeFieldLookup)
	if err != nil {
		return nil, err
	}
	return New(encKey, lookupKey)
}

// Encrypt seals plaintext with a fresh random nonce.
func (c *Codec) Encrypt(plaintext string) ([]byte, error) {
	if plaintext == "" {
		return nil, ErrEmptyPlaintext
	}

	nonceSize := c.aead.NonceSize()
	out := make([]byte, 1+nonceSize, 1+nonceSize+len(plaintext)+c.aead.Overhead())
	out[0] = version1
	if _, err := io.ReadFull(rand.Reader, out[1:]); err != nil {
		return nil, err
	}

	return c.aead.Seal(out, out[1:], []byte(plaintext), nil), nil
}

// Decrypt opens a ciphertext produced by Encrypt. Every failure wraps ErrDecryption.
func (c *Codec) Decrypt(ciphertext []byte) (string, error) {
	nonceSize := c.aead.NonceSize()
	if len(ciphertext) < 1+nonceSize+c.aead.Overhead() {
		return "", errors.Join(ErrDecryption, errCiphertextTooShort)
	}
	if ciphertext[0] != version1 {
		return "", errors.Join(ErrDecryption, errUnknownVersion)
	}

	nonce := ciphertext[1 : 1+nonceSize]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext[1+nonceSize:], nil)
	if err != nil {
		return "", errors.Join(ErrDecryption, err)
	}
	return string(plaintext), nil
}

// LookupHash computes HMAC-SHA256(lookupKey, domain || 0x00 || normalize(plaintext)).
// A nil normalize means NormalizeText.
func (c *Codec) LookupHash(domain, plaintext string, normalize Normalizer) []byte {
	if normalize == nil {
		normalize = NormalizeText
	}

	mac := hmac.New(sha256.New, c.lookupKey)
	mac.Write([]byte(domain))
	mac.Write([]byte{0})
	mac.Write([]byte(normalize(plaintext)))
	return mac.Sum(nil)
}
