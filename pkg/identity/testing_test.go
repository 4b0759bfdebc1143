package identity_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bpmonitor/idvault/pkg/fieldcrypt"
	"github.com/bpmonitor/idvault/pkg/identity"
	"github.com/bpmonitor/idvault/pkg/secrets"
)

// countingCipher wraps a real codec and counts calls.
type countingCipher struct {
	codec  *fieldcrypt.Codec
	opens  atomic.Int32
	seals  atomic.Int32
	hashes atomic.Int32
}

func (c *countingCipher) Seal(spec fieldcrypt.Spec, plaintext string) (fieldcrypt.Sealed, error) {
	c.seals.Add(1)
	return c.codec.Seal(spec, plaintext)
}

func (c *countingCipher) Open(s fieldcrypt.Sealed) (string, error) {
	c.opens.Add(1)
	return c.codec.Open(s)
}

func (c *countingCipher) LookupHash(domain, plaintext string, normalize fieldcrypt.Normalizer) []byte {
	c.hashes.Add(1)
	return c.codec.LookupHash(domain, plaintext, normalize)
}

var _ identity.Cipher = (*countingCipher)(nil)

func newCipher(t *testing.T) *countingCipher {
	t.Helper()
	master, err := secrets.GenerateKey()
	require.NoError(t, err)
	ring, err := secrets.NewKeyring(master)
	require.NoError(t, err)
	codec, err := fieldcrypt.FromKeyring(ring)
	require.NoError(t, err)
	return &countingCipher{codec: codec}
}
