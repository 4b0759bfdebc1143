package identity

import "github.com/bpmonitor/idvault/pkg/fieldcrypt"

// Cipher seals and opens field values. *fieldcrypt.Codec implements it.
type Cipher interface {
	Seal(spec fieldcrypt.Spec, plaintext string) (fieldcrypt.Sealed, error)
	Open(s fieldcrypt.Sealed) (string, error)
	LookupHash(domain, plaintext string, normalize fieldcrypt.Normalizer) []byte
}

var _ Cipher = (*fieldcrypt.Codec)(nil)
