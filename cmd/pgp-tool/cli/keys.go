package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/effective-security/xlog"
	"github.com/effective-security/xpgp/gpg"
	"github.com/effective-security/xpgp/x/print"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// KeysCmd provides key resolution commands
type KeysCmd struct {
	List    ListKeysCmd    `cmd:"" help:"list usable keys by user ID"`
	Info    KeyInfoCmd     `cmd:"" help:"print key information by key ID"`
	Unlock  UnlockKeyCmd   `cmd:"" help:"resolve and unlock a private key by key ID"`
	Signers SigningKeysCmd `cmd:"" help:"resolve signing keys with their passphrases"`
}

// ListKeysCmd specifies flags for the list action
type ListKeysCmd struct {
	Keyring    string   `kong:"arg" required:"" help:"keyring file name"`
	UID        []string `name:"uid" help:"user ID substring filters (optional)"`
	Encryption bool     `help:"select encryption keys instead of signing keys"`
}

// Run the command
func (a *ListKeysCmd) Run(ctx *Cli) error {
	keys, err := gpg.SelectPublicKeysFrom(ctx.Context(),
		gpg.Source{Resource: a.Keyring}, gpg.FileLoader{}, a.UID, a.Encryption)
	if err != nil {
		return errors.WithMessage(err, "unable to select keys")
	}

	if len(keys) == 0 {
		fmt.Fprintln(ctx.Writer(), "no keys found")
		return nil
	}
	print.Keys(ctx.Writer(), keys)
	return nil
}

// KeyInfoCmd specifies flags for the info action
type KeyInfoCmd struct {
	Keyring string   `kong:"arg" required:"" help:"keyring file name"`
	ID      string   `kong:"arg" required:"" help:"key ID in hex"`
	UID     []string `name:"uid" help:"user ID restriction (optional)"`
}

// Run the command
func (a *KeyInfoCmd) Run(ctx *Cli) error {
	keyID, err := parseKeyID(a.ID)
	if err != nil {
		return err
	}

	col, err := gpg.LoadCollection(ctx.Context(),
		gpg.Source{Resource: a.Keyring}, gpg.PurposeSignature, gpg.FileLoader{})
	if err != nil {
		return errors.WithMessage(err, "unable to load keyring")
	}

	key := gpg.PublicKeyByID(col, keyID, a.UID)
	if key == nil {
		return errors.Errorf("key not found: %s", a.ID)
	}

	ctx.WriteJSON(keyInfo{
		ID:         key.IDString(),
		Algorithm:  key.Algorithm.String(),
		Encryption: key.CanEncrypt(),
		Signing:    key.CanSign(),
	})
	return nil
}

type keyInfo struct {
	ID         string `json:"id"`
	Algorithm  string `json:"algorithm"`
	Encryption bool   `json:"encryption"`
	Signing    bool   `json:"signing"`
}

// UnlockKeyCmd specifies flags for the unlock action
type UnlockKeyCmd struct {
	Keyring     string `kong:"arg" required:"" help:"secret keyring file name"`
	ID          string `kong:"arg" required:"" help:"key ID in hex"`
	Passphrase  string `help:"explicit passphrase (optional)"`
	Passphrases string `help:"YAML file with user ID to passphrase map (optional)"`
}

// Run the command
func (a *UnlockKeyCmd) Run(ctx *Cli) error {
	keyID, err := parseKeyID(a.ID)
	if err != nil {
		return err
	}

	var passphrase []byte
	if a.Passphrase != "" {
		passphrase = []byte(a.Passphrase)
	}
	var accessor gpg.PassphraseAccessor
	if a.Passphrases != "" {
		m, err := loadPassphraseMap(ctx, a.Passphrases)
		if err != nil {
			return err
		}
		accessor = gpg.MapAccessor(m)
	}

	pk, err := gpg.FindPrivateKeyFrom(ctx.Context(),
		gpg.Source{Resource: a.Keyring}, gpg.FileLoader{}, keyID, passphrase, accessor, nil)
	if err != nil {
		return errors.WithMessage(err, "unable to resolve private key")
	}
	if pk == nil {
		return errors.Errorf("no private key unlocked for key ID: %s", a.ID)
	}

	fmt.Fprintf(ctx.Writer(), "unlocked private key: %016X\n", pk.KeyId)
	return nil
}

// SigningKeysCmd specifies flags for the signers action
type SigningKeysCmd struct {
	Keyring     string `kong:"arg" required:"" help:"secret keyring file name"`
	Passphrases string `kong:"arg" required:"" help:"YAML file with user ID to passphrase map"`
}

// Run the command
func (a *SigningKeysCmd) Run(ctx *Cli) error {
	m, err := loadPassphraseMap(ctx, a.Passphrases)
	if err != nil {
		return err
	}

	matches, err := gpg.FindSigningKeysFrom(ctx.Context(),
		gpg.Source{Resource: a.Keyring}, gpg.FileLoader{}, m, nil)
	if err != nil {
		return errors.WithMessage(err, "unable to resolve signing keys")
	}

	if len(matches) == 0 {
		fmt.Fprintln(ctx.Writer(), "no signing keys unlocked")
		return nil
	}
	for i, match := range matches {
		fmt.Fprintf(ctx.Writer(), "[%d]\n", i)
		fmt.Fprintf(ctx.Writer(), "  Id: %s\n", match.Key.IDString())
		fmt.Fprintf(ctx.Writer(), "  User ID: %s\n", match.UserID)
	}
	return nil
}

func parseKeyID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 64)
	if err != nil {
		return 0, errors.WithMessagef(err, "unable to parse key ID: %s", s)
	}
	return id, nil
}

func loadPassphraseMap(ctx *Cli, filename string) (map[string]string, error) {
	data, err := ctx.ReadFile(filename)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to load passphrase file")
	}
	m := map[string]string{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.WithMessagef(err, "failed to decode file: %s", filename)
	}
	logger.KV(xlog.DEBUG, "file", filename, "entries", len(m))
	return m, nil
}
