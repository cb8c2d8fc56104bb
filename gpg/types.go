package gpg

import (
	"fmt"

	"golang.org/x/crypto/openpgp/packet"
)

// Algorithm identifies a public key algorithm, using RFC 4880 numbering.
type Algorithm uint8

// Public key algorithms
const (
	AlgoRSA            Algorithm = 1
	AlgoRSAEncryptOnly Algorithm = 2
	AlgoRSASignOnly    Algorithm = 3
	AlgoElGamal        Algorithm = 16
	AlgoDSA            Algorithm = 17
	AlgoECDH           Algorithm = 18
	AlgoECDSA          Algorithm = 19
	AlgoEdDSA          Algorithm = 22
)

// CanEncrypt reports whether the algorithm is capable of encryption.
func (a Algorithm) CanEncrypt() bool {
	switch a {
	case AlgoRSA, AlgoRSAEncryptOnly, AlgoElGamal, AlgoECDH:
		return true
	}
	return false
}

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case AlgoRSA:
		return "RSA"
	case AlgoRSAEncryptOnly:
		return "RSA-encrypt-only"
	case AlgoRSASignOnly:
		return "RSA-sign-only"
	case AlgoElGamal:
		return "ElGamal"
	case AlgoDSA:
		return "DSA"
	case AlgoECDH:
		return "ECDH"
	case AlgoECDSA:
		return "ECDSA"
	case AlgoEdDSA:
		return "EdDSA"
	}
	return fmt.Sprintf("algo(%d)", uint8(a))
}

// KeyFlags is the RFC 4880 key flags bitset carried in a signature's
// hashed subpackets.
type KeyFlags uint8

// Key flag bits
const (
	FlagCertify               KeyFlags = 1 << 0
	FlagSign                  KeyFlags = 1 << 1
	FlagEncryptCommunications KeyFlags = 1 << 2
	FlagEncryptStorage        KeyFlags = 1 << 3
)

// Signature is the snapshot of a key signature, reduced to its declared
// key usage. FlagsPresent distinguishes "no key flags subpacket" from
// "key flags subpacket with no bits set".
type Signature struct {
	Flags        KeyFlags
	FlagsPresent bool
}

// Key is the snapshot of a single public or secret key in a ring.
type Key struct {
	ID         uint64
	Algorithm  Algorithm
	Signatures []Signature

	private *packet.PrivateKey
}

// IDString returns the key ID in the conventional 16 digit hex form.
func (k *Key) IDString() string {
	return keyIDString(k.ID)
}

func keyIDString(id uint64) string {
	return fmt.Sprintf("%016X", id)
}

// HasPrivate reports whether the key carries secret key material.
func (k *Key) HasPrivate() bool {
	return k.private != nil
}

// Ring is one keyring: a primary key followed by its subkeys. Only the
// primary key carries user IDs; subkeys inherit the identity association.
type Ring struct {
	UserIDs []string
	Keys    []Key
}

// Primary returns the ring's primary key, or nil for an empty ring.
func (r *Ring) Primary() *Key {
	if len(r.Keys) == 0 {
		return nil
	}
	return &r.Keys[0]
}

// Key returns the ring member with the given key ID, or nil.
func (r *Ring) Key(id uint64) *Key {
	for i := range r.Keys {
		if r.Keys[i].ID == id {
			return &r.Keys[i]
		}
	}
	return nil
}

// Collection is an ordered set of keyrings decoded from a single byte
// stream. It is immutable for the duration of a resolution call.
type Collection struct {
	Rings []Ring
}

// RingWithKey returns the first ring containing the given key ID, or nil.
func (c *Collection) RingWithKey(id uint64) *Ring {
	for i := range c.Rings {
		if c.Rings[i].Key(id) != nil {
			return &c.Rings[i]
		}
	}
	return nil
}
