package gpg

import (
	"context"
	"sort"
	"time"

	"github.com/effective-security/xlog"
	"github.com/effective-security/xpgp/metricskey"
	"golang.org/x/crypto/openpgp/packet"
)

// PassphraseAccessor resolves a passphrase for a primary key user ID.
// A nil result means no passphrase is known for that user ID.
type PassphraseAccessor interface {
	Passphrase(userID string) []byte
}

// MapAccessor resolves passphrases from an in-memory user ID map.
type MapAccessor map[string]string

// Passphrase returns the passphrase for the user ID, or nil.
func (m MapAccessor) Passphrase(userID string) []byte {
	if v, ok := m[userID]; ok {
		return []byte(v)
	}
	return nil
}

// Extractor unlocks the private key material of a secret key. An attempt
// with a wrong passphrase reports ok false; it is never an error.
type Extractor interface {
	Extract(key *Key, passphrase []byte) (*packet.PrivateKey, bool)
}

// PBEExtractor decrypts passphrase protected private key material. The
// snapshot key is never mutated; decryption runs on a copy.
type PBEExtractor struct{}

// Extract unlocks the key's private material with the passphrase.
func (PBEExtractor) Extract(key *Key, passphrase []byte) (*packet.PrivateKey, bool) {
	if key == nil || key.private == nil {
		return nil, false
	}
	pk := *key.private
	if err := pk.Decrypt(passphrase); err != nil {
		logger.KV(xlog.DEBUG, "reason", "decrypt", "id", key.IDString(), "err", err.Error())
		return nil, false
	}
	return &pk, true
}

// FindPrivateKey scans the collection for the secret key with the given
// key ID and attempts to unlock it. The passphrase resolution order is:
// the explicit passphrase when non-nil, as the sole attempt; otherwise the
// accessor, queried with each of the primary key's user IDs until one
// yields a passphrase; when neither is supplied, an empty passphrase.
// A failed attempt moves the scan to the next ring. A nil result means
// no key was unlocked; it is not an error.
func FindPrivateKey(col *Collection, keyID uint64, passphrase []byte, accessor PassphraseAccessor, ex Extractor) *packet.PrivateKey {
	defer metricskey.PerfKeyResolution.MeasureSince(time.Now(), "find_private")

	if ex == nil {
		ex = PBEExtractor{}
	}

	for i := range col.Rings {
		ring := &col.Rings[i]
		key := ring.Key(keyID)
		if key == nil || key.private == nil {
			continue
		}

		attempt := passphrase
		if attempt == nil && accessor != nil {
			// only the primary key carries user IDs
			for _, uid := range ring.UserIDs {
				if p := accessor.Passphrase(uid); p != nil {
					attempt = p
					break
				}
			}
		}
		if attempt != nil {
			if pk, ok := ex.Extract(key, attempt); ok {
				return pk
			}
		} else if accessor == nil {
			// neither an explicit passphrase nor an accessor:
			// the key may be protected by an empty passphrase
			if pk, ok := ex.Extract(key, []byte{}); ok {
				return pk
			}
		}
		logger.KV(xlog.DEBUG, "reason", "not_unlocked", "id", key.IDString())
	}
	return nil
}

// FindPrivateKeyFrom decodes the keyring source and resolves the private
// key, releasing the source stream on all paths.
func FindPrivateKeyFrom(ctx context.Context, src Source, loader Loader, keyID uint64, passphrase []byte, accessor PassphraseAccessor, ex Extractor) (*packet.PrivateKey, error) {
	col, err := LoadCollection(ctx, src, PurposeEncryption, loader)
	if err != nil {
		return nil, err
	}
	return FindPrivateKey(col, keyID, passphrase, accessor, ex), nil
}

// SigningKeyMatch couples a signing capable secret key with its unlocked
// private key and the user ID that matched the password map.
type SigningKeyMatch struct {
	Key     *Key
	Private *packet.PrivateKey
	UserID  string
}

// FindSigningKeys matches each ring's primary user IDs against the
// password map's key set and, for every signing capable key in a matched
// ring, attempts extraction with the password of the matched part.
// Successful extractions are appended in ring then key order; failed ones
// are omitted without error.
func FindSigningKeys(col *Collection, userIDToPassword map[string]string, ex Extractor) []SigningKeyMatch {
	defer metricskey.PerfKeyResolution.MeasureSince(time.Now(), "signing_keys")

	if ex == nil {
		ex = PBEExtractor{}
	}

	// map iteration order is random; sort the parts so the last-match
	// user ID scan is deterministic
	parts := make([]string, 0, len(userIDToPassword))
	for p := range userIDToPassword {
		parts = append(parts, p)
	}
	sort.Strings(parts)

	res := make([]SigningKeyMatch, 0, len(userIDToPassword))
	for i := range col.Rings {
		ring := &col.Rings[i]
		primary := ring.Primary()
		if primary == nil {
			continue
		}

		userID, part, ok := matchUserID(parts, ring.UserIDs)
		if !ok {
			logger.KV(xlog.DEBUG, "reason", "no_user_id", "primary", primary.IDString(), "parts", parts)
			continue
		}

		password := []byte(userIDToPassword[part])
		for j := range ring.Keys {
			key := &ring.Keys[j]
			if !key.CanSign() || key.private == nil {
				continue
			}
			pk, ok := ex.Extract(key, password)
			if !ok {
				continue
			}
			logger.KV(xlog.DEBUG, "status", "signing_key_added", "user_id", userID, "id", key.IDString())
			res = append(res, SigningKeyMatch{Key: key, Private: pk, UserID: userID})
		}
	}
	return res
}

// FindSigningKeysFrom decodes the keyring source and resolves signing
// keys, releasing the source stream on all paths.
func FindSigningKeysFrom(ctx context.Context, src Source, loader Loader, userIDToPassword map[string]string, ex Extractor) ([]SigningKeyMatch, error) {
	col, err := LoadCollection(ctx, src, PurposeSignature, loader)
	if err != nil {
		return nil, err
	}
	return FindSigningKeys(col, userIDToPassword, ex), nil
}
