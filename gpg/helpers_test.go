package gpg_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/packet"
)

// newTestEntity generates an RSA primary key with one encryption subkey
// and signs its metadata.
func newTestEntity(t *testing.T, name, email string) *openpgp.Entity {
	t.Helper()

	ent, err := openpgp.NewEntity(name, "", email, &packet.Config{RSABits: 1024})
	require.NoError(t, err)

	// SerializePrivate signs the identities and subkeys
	var buf bytes.Buffer
	require.NoError(t, ent.SerializePrivate(&buf, nil))
	return ent
}

func publicKeyring(t *testing.T, ents ...*openpgp.Entity) []byte {
	t.Helper()

	var buf bytes.Buffer
	for _, ent := range ents {
		require.NoError(t, ent.Serialize(&buf))
	}
	return buf.Bytes()
}

func secretKeyring(t *testing.T, ents ...*openpgp.Entity) []byte {
	t.Helper()

	var buf bytes.Buffer
	for _, ent := range ents {
		require.NoError(t, ent.SerializePrivate(&buf, nil))
	}
	return buf.Bytes()
}
