package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/packet"
)

type keysSuite struct {
	suite.Suite

	ctl *Cli
	out *bytes.Buffer

	pubFile string
	secFile string
	entity  *openpgp.Entity
}

func TestKeysSuite(t *testing.T) {
	suite.Run(t, new(keysSuite))
}

func (s *keysSuite) SetupSuite() {
	ent, err := openpgp.NewEntity("Alice", "", "alice@example.com", &packet.Config{RSABits: 1024})
	s.Require().NoError(err)
	s.entity = ent

	var sec bytes.Buffer
	s.Require().NoError(ent.SerializePrivate(&sec, nil))
	var pub bytes.Buffer
	s.Require().NoError(ent.Serialize(&pub))

	dir := s.T().TempDir()
	s.pubFile = filepath.Join(dir, "pub.gpg")
	s.secFile = filepath.Join(dir, "sec.gpg")
	s.Require().NoError(os.WriteFile(s.pubFile, pub.Bytes(), 0644))
	s.Require().NoError(os.WriteFile(s.secFile, sec.Bytes(), 0644))
}

func (s *keysSuite) SetupTest() {
	s.out = bytes.NewBuffer([]byte{})
	s.ctl = new(Cli).WithWriter(s.out).WithErrWriter(s.out)
}

func (s *keysSuite) TestListEncryption() {
	cmd := ListKeysCmd{
		Keyring:    s.pubFile,
		UID:        []string{"alice"},
		Encryption: true,
	}
	err := cmd.Run(s.ctl)
	s.Require().NoError(err)

	subID := fmt.Sprintf("%016X", s.entity.Subkeys[0].PublicKey.KeyId)
	s.Contains(s.out.String(), subID)
	s.NotContains(s.out.String(), fmt.Sprintf("%016X", s.entity.PrimaryKey.KeyId))
}

func (s *keysSuite) TestListNoMatch() {
	cmd := ListKeysCmd{
		Keyring: s.pubFile,
		UID:     []string{"carol"},
	}
	err := cmd.Run(s.ctl)
	s.Require().NoError(err)
	s.Contains(s.out.String(), "no keys found")
}

func (s *keysSuite) TestListMissingKeyring() {
	cmd := ListKeysCmd{
		Keyring: s.pubFile + ".missing",
	}
	err := cmd.Run(s.ctl)
	s.Require().Error(err)
	s.Contains(err.Error(), "unable to select keys")
}

func (s *keysSuite) TestInfo() {
	cmd := KeyInfoCmd{
		Keyring: s.pubFile,
		ID:      fmt.Sprintf("%016x", s.entity.PrimaryKey.KeyId),
		UID:     []string{"alice"},
	}
	err := cmd.Run(s.ctl)
	s.Require().NoError(err)
	s.Contains(s.out.String(), "RSA")
	s.Contains(s.out.String(), "signing")
}

func (s *keysSuite) TestInfoRestricted() {
	cmd := KeyInfoCmd{
		Keyring: s.pubFile,
		ID:      fmt.Sprintf("%016x", s.entity.PrimaryKey.KeyId),
		UID:     []string{"carol"},
	}
	err := cmd.Run(s.ctl)
	s.Require().Error(err)
	s.Contains(err.Error(), "key not found")
}

func (s *keysSuite) TestInfoBadID() {
	cmd := KeyInfoCmd{
		Keyring: s.pubFile,
		ID:      "not-hex",
	}
	err := cmd.Run(s.ctl)
	s.Require().Error(err)
	s.Contains(err.Error(), "unable to parse key ID")
}

func (s *keysSuite) TestUnlock() {
	cmd := UnlockKeyCmd{
		Keyring: s.secFile,
		ID:      fmt.Sprintf("%016x", s.entity.PrimaryKey.KeyId),
	}
	err := cmd.Run(s.ctl)
	s.Require().NoError(err)
	s.Contains(s.out.String(), "unlocked private key")
}

func (s *keysSuite) TestSigners() {
	passFile := filepath.Join(s.T().TempDir(), "pass.yaml")
	s.Require().NoError(os.WriteFile(passFile, []byte("alice: \"\"\n"), 0644))

	cmd := SigningKeysCmd{
		Keyring:     s.secFile,
		Passphrases: passFile,
	}
	err := cmd.Run(s.ctl)
	s.Require().NoError(err)
	s.Contains(s.out.String(), "User ID: Alice <alice@example.com>")
	s.Contains(s.out.String(), fmt.Sprintf("%016X", s.entity.PrimaryKey.KeyId))
}
