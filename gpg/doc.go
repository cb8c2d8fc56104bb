// Package gpg resolves OpenPGP keys from keyring material.
//
// This package supports:
//   - Decoding armored or binary keyrings into an immutable snapshot
//   - Selecting public keys by user ID substring and usage
//   - Locating a public key by key ID with a user ID restriction
//   - Resolving and unlocking private keys with a layered passphrase policy
//   - Batch resolution of signing keys from a user ID to passphrase map
//
// Keyring parsing and private key decryption are delegated to
// golang.org/x/crypto/openpgp; resolution logic operates on the decoded
// snapshot only.
package gpg
