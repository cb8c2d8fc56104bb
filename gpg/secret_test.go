package gpg_test

import (
	"testing"

	"github.com/effective-security/xpgp/gpg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/openpgp/packet"
)

// stubExtractor accepts a single passphrase and records every attempt.
type stubExtractor struct {
	accept   string
	attempts []string
}

func (s *stubExtractor) Extract(key *gpg.Key, passphrase []byte) (*packet.PrivateKey, bool) {
	s.attempts = append(s.attempts, string(passphrase))
	if string(passphrase) == s.accept {
		return &packet.PrivateKey{}, true
	}
	return nil, false
}

func Test_FindPrivateKey(t *testing.T) {
	alice := newTestEntity(t, "Alice", "alice@example.com")
	aliceUID := "Alice <alice@example.com>"
	primaryID := alice.PrimaryKey.KeyId

	col, err := gpg.DecodeBytes(secretKeyring(t, alice))
	require.NoError(t, err)

	t.Run("explicit passphrase is the sole attempt", func(t *testing.T) {
		ex := &stubExtractor{accept: "correct"}
		accessor := gpg.MapAccessor{aliceUID: "correct"}

		pk := gpg.FindPrivateKey(col, primaryID, []byte("wrong"), accessor, ex)
		assert.Nil(t, pk)
		// the failed explicit attempt must not fall through to the accessor
		assert.Equal(t, []string{"wrong"}, ex.attempts)
	})

	t.Run("accessor queried with primary user ids", func(t *testing.T) {
		ex := &stubExtractor{accept: "correct"}
		accessor := gpg.MapAccessor{aliceUID: "correct"}

		pk := gpg.FindPrivateKey(col, primaryID, nil, accessor, ex)
		require.NotNil(t, pk)
		assert.Equal(t, []string{"correct"}, ex.attempts)
	})

	t.Run("accessor without passphrase makes no attempt", func(t *testing.T) {
		ex := &stubExtractor{accept: ""}
		accessor := gpg.MapAccessor{"carol@example.com": "pw"}

		pk := gpg.FindPrivateKey(col, primaryID, nil, accessor, ex)
		assert.Nil(t, pk)
		assert.Empty(t, ex.attempts)
	})

	t.Run("empty passphrase fallback", func(t *testing.T) {
		// the generated key is not passphrase protected; with neither an
		// explicit passphrase nor an accessor the empty attempt unlocks it
		pk := gpg.FindPrivateKey(col, primaryID, nil, nil, nil)
		require.NotNil(t, pk)
		assert.Equal(t, primaryID, pk.KeyId)
	})

	t.Run("subkey by id", func(t *testing.T) {
		subID := alice.Subkeys[0].PublicKey.KeyId
		pk := gpg.FindPrivateKey(col, subID, nil, nil, nil)
		require.NotNil(t, pk)
		assert.Equal(t, subID, pk.KeyId)
	})

	t.Run("not found is not an error", func(t *testing.T) {
		assert.Nil(t, gpg.FindPrivateKey(col, 0xDEADBEEF, nil, nil, nil))
	})
}

func Test_FindSigningKeys(t *testing.T) {
	alice := newTestEntity(t, "Alice", "alice@example.com")

	col, err := gpg.DecodeBytes(secretKeyring(t, alice))
	require.NoError(t, err)

	t.Run("matched user id with password", func(t *testing.T) {
		ex := &stubExtractor{accept: "pw1"}
		matches := gpg.FindSigningKeys(col, map[string]string{
			"alice": "pw1",
			"carol": "pw2",
		}, ex)

		// only the primary key is signing capable; carol matches no ring
		// and produces neither entries nor an error
		require.Len(t, matches, 1)
		assert.Equal(t, alice.PrimaryKey.KeyId, matches[0].Key.ID)
		assert.Contains(t, matches[0].UserID, "alice")
		assert.NotNil(t, matches[0].Private)
	})

	t.Run("failed extraction is omitted", func(t *testing.T) {
		ex := &stubExtractor{accept: "other"}
		matches := gpg.FindSigningKeys(col, map[string]string{"alice": "pw1"}, ex)
		assert.Empty(t, matches)
		assert.Equal(t, []string{"pw1"}, ex.attempts)
	})

	t.Run("no match", func(t *testing.T) {
		matches := gpg.FindSigningKeys(col, map[string]string{"carol": "pw"}, nil)
		assert.Empty(t, matches)
	})

	t.Run("default extractor", func(t *testing.T) {
		// unprotected key material unlocks regardless of the password
		matches := gpg.FindSigningKeys(col, map[string]string{"alice": "ignored"}, nil)
		require.Len(t, matches, 1)
		assert.Equal(t, alice.PrimaryKey.KeyId, matches[0].Private.KeyId)
	})
}

func Test_PBEExtractor(t *testing.T) {
	alice := newTestEntity(t, "Alice", "alice@example.com")

	col, err := gpg.DecodeBytes(secretKeyring(t, alice))
	require.NoError(t, err)

	key := col.Rings[0].Primary()
	pk, ok := gpg.PBEExtractor{}.Extract(key, nil)
	require.True(t, ok)
	assert.Equal(t, key.ID, pk.KeyId)

	// a public key carries no private material
	pubCol, err := gpg.DecodeBytes(publicKeyring(t, alice))
	require.NoError(t, err)
	_, ok = gpg.PBEExtractor{}.Extract(pubCol.Rings[0].Primary(), nil)
	assert.False(t, ok)
}
