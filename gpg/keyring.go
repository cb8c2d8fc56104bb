package gpg

import (
	"bytes"
	"context"
	"io"
	"sort"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"
)

var armorPrefix = []byte("-----BEGIN PGP")

// Decode reads a keyring collection from armored or binary keyring bytes.
func Decode(r io.Reader) (*Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes a keyring collection from armored or binary keyring
// bytes.
func DecodeBytes(data []byte) (*Collection, error) {
	var el openpgp.EntityList
	var err error

	if bytes.HasPrefix(bytes.TrimSpace(data), armorPrefix) {
		el, err = readArmored(bytes.NewReader(data))
	} else {
		el, err = openpgp.ReadKeyRing(bytes.NewReader(data))
	}
	if err != nil {
		return nil, errors.Mark(errors.WithMessage(err, "decode keyring"), ErrMalformedKeyring)
	}

	return snapshot(el), nil
}

// readArmored decodes every armor block in the stream, not only the first
// one; concatenated key exports keep each entity in its own block.
func readArmored(r io.Reader) (openpgp.EntityList, error) {
	keyring := make(openpgp.EntityList, 0)

	for {
		block, err := armor.Decode(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}

		el, err := openpgp.ReadKeyRing(block.Body)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		keyring = append(keyring, el...)
	}

	return keyring, nil
}

// DecodeFile reads a keyring collection from the given file path.
func DecodeFile(path string) (*Collection, error) {
	f, err := FileLoader{}.LoadResource(context.Background(), path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// DecodeFiles reads keyring collections from the given file paths and
// merges them into a single collection, preserving file and ring order.
//
// This function might typically be used to read all keys in a trusted
// keys directory.
func DecodeFiles(files []string) (*Collection, error) {
	col := &Collection{}
	for _, path := range files {
		c, err := DecodeFile(path)
		if err != nil {
			return nil, err
		}
		col.Rings = append(col.Rings, c.Rings...)
	}
	return col, nil
}

// snapshot converts the parsed entity list into the owned, read-only
// collection the selectors operate on. Resolution logic never touches the
// entity list again; only the private key handles are retained for
// extraction.
func snapshot(el openpgp.EntityList) *Collection {
	col := &Collection{Rings: make([]Ring, 0, len(el))}
	for _, ent := range el {
		ring := Ring{}

		// the parser exposes identities as a map; sort for a
		// deterministic traversal order
		for name := range ent.Identities {
			ring.UserIDs = append(ring.UserIDs, name)
		}
		sort.Strings(ring.UserIDs)

		primary := Key{
			ID:        ent.PrimaryKey.KeyId,
			Algorithm: Algorithm(ent.PrimaryKey.PubKeyAlgo),
			private:   ent.PrivateKey,
		}
		for _, name := range ring.UserIDs {
			ident := ent.Identities[name]
			if ident.SelfSignature != nil {
				primary.Signatures = append(primary.Signatures, newSignature(ident.SelfSignature))
			}
			for _, sig := range ident.Signatures {
				primary.Signatures = append(primary.Signatures, newSignature(sig))
			}
		}
		ring.Keys = append(ring.Keys, primary)

		for i := range ent.Subkeys {
			sub := &ent.Subkeys[i]
			key := Key{
				ID:        sub.PublicKey.KeyId,
				Algorithm: Algorithm(sub.PublicKey.PubKeyAlgo),
				private:   sub.PrivateKey,
			}
			if sub.Sig != nil {
				key.Signatures = append(key.Signatures, newSignature(sub.Sig))
			}
			ring.Keys = append(ring.Keys, key)
		}

		col.Rings = append(col.Rings, ring)
	}
	return col
}

func newSignature(sig *packet.Signature) Signature {
	s := Signature{FlagsPresent: sig.FlagsValid}
	if !sig.FlagsValid {
		return s
	}
	if sig.FlagCertify {
		s.Flags |= FlagCertify
	}
	if sig.FlagSign {
		s.Flags |= FlagSign
	}
	if sig.FlagEncryptCommunications {
		s.Flags |= FlagEncryptCommunications
	}
	if sig.FlagEncryptStorage {
		s.Flags |= FlagEncryptStorage
	}
	return s
}
