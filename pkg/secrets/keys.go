package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the size of the master key and of every derived subkey.
const KeySize = 32

// Purpose labels a derived subkey. The label is the HKDF info parameter.
type Purpose string

const (
	PurposeFieldEncryption Purpose = "idvault/field-encryption/v1"
	PurposeFieldLookup     Purpose = "idvault/field-lookup/v1"
	PurposeOTPSeed         Purpose = "idvault/otp-seed/v1"
)

func (p Purpose) valid() bool {
	switch p {
	case PurposeFieldEncryption, PurposeFieldLookup, PurposeOTPSeed:
		return true
	}
	return false
}

// Keyring derives purpose-bound subkeys from one master key.
// It is immutable after construction and safe for concurrent use.
type Keyring struct {
	master []byte
}

// NewKeyring copies master and returns a Keyring. master must be KeySize bytes.
func NewKeyring(master []byte) (*Keyring, error) {
	if len(master) != KeySize {
		return nil, ErrInvalidKey
	}
	k := make([]byte, KeySize)
	copy(k, master)
	return &Keyring{master: k}, nil
}

// Derive returns the subkey for purpose. The same purpose always yields the same bytes.
func (k *Keyring) Derive(purpose Purpose) ([]byte, error) {
	if !purpose.valid() {
		return nil, ErrUnknownPurpose
	}

	r := hkdf.New(sha256.New, k.master, nil, []byte(purpose))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

// MustDerive is Derive for wiring code where an unknown purpose is a programming error.
func (k *Keyring) MustDerive(purpose Purpose) []byte {
	key, err := k.Derive(purpose)
	if err != nil {
		panic(err)
	}
	return key
}

// ParseKey decodes a base64 key and checks its length.
func ParseKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}

// GenerateKey creates a new random 32-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// GenerateEncodedKey returns a fresh key in the base64 form ParseKey accepts.
func GenerateEncodedKey() (string, error) {
	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
