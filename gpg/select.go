package gpg

import (
	"context"
	"strings"
	"time"

	"github.com/effective-security/xlog"
	"github.com/effective-security/xpgp/metricskey"
)

// matchUserID scans every user ID against every filter part using
// substring containment and returns the last match encountered; the scan
// does not short-circuit on the first hit.
func matchUserID(parts []string, userIDs []string) (userID, part string, ok bool) {
	for _, uid := range userIDs {
		for _, p := range parts {
			if strings.Contains(uid, p) {
				userID, part, ok = uid, p, true
			}
		}
	}
	return
}

// allowedUserID reports whether the user IDs satisfy the restriction.
// An empty parts list means no restriction.
func allowedUserID(parts []string, userIDs []string) bool {
	if len(parts) == 0 {
		return true
	}
	for _, uid := range userIDs {
		for _, p := range parts {
			if strings.Contains(uid, p) {
				return true
			}
		}
	}
	return false
}

// SelectPublicKeys returns every key, in ring then key order, that belongs
// to a ring whose primary key user IDs contain one of the filter parts and
// that is usable for the requested purpose. Empty parts select from every
// ring. Rings without a matching user ID are skipped, not an error.
func SelectPublicKeys(col *Collection, parts []string, forEncryption bool) []*Key {
	defer metricskey.PerfKeyResolution.MeasureSince(time.Now(), "select_public")

	var res []*Key
	for i := range col.Rings {
		ring := &col.Rings[i]
		primary := ring.Primary()
		if primary == nil {
			continue
		}

		userID := ""
		if len(parts) > 0 {
			var ok bool
			userID, _, ok = matchUserID(parts, ring.UserIDs)
			if !ok {
				logger.KV(xlog.DEBUG, "reason", "no_user_id", "primary", primary.IDString(), "parts", parts)
				continue
			}
			logger.KV(xlog.DEBUG, "user_id", userID, "primary", primary.IDString())
		}

		for j := range ring.Keys {
			key := &ring.Keys[j]
			if forEncryption && key.CanEncrypt() {
				logger.KV(xlog.DEBUG, "usage", "encryption", "user_id", userID, "id", key.IDString())
				res = append(res, key)
			} else if !forEncryption && key.CanSign() {
				logger.KV(xlog.DEBUG, "usage", "signing", "user_id", userID, "id", key.IDString())
				res = append(res, key)
			}
		}
	}
	return res
}

// SelectPublicKeysFrom decodes the keyring source and selects public keys,
// releasing the source stream on all paths.
func SelectPublicKeysFrom(ctx context.Context, src Source, loader Loader, parts []string, forEncryption bool) ([]*Key, error) {
	purpose := PurposeSignature
	if forEncryption {
		purpose = PurposeEncryption
	}
	col, err := LoadCollection(ctx, src, purpose, loader)
	if err != nil {
		return nil, err
	}
	return SelectPublicKeys(col, parts, forEncryption), nil
}

// PublicKeyByID returns the key with the given key ID, if the user IDs of
// its ring's primary key satisfy the restriction. The key may be a subkey;
// the restriction is always evaluated against the primary key. A missing
// key or a violated restriction returns nil, not an error.
func PublicKeyByID(col *Collection, keyID uint64, parts []string) *Key {
	defer metricskey.PerfKeyResolution.MeasureSince(time.Now(), "by_id")

	ring := col.RingWithKey(keyID)
	if ring == nil {
		logger.KV(xlog.DEBUG, "reason", "not_found", "id", keyIDString(keyID))
		return nil
	}
	if !allowedUserID(parts, ring.UserIDs) {
		logger.KV(xlog.WARNING, "reason", "user_id_restriction", "id", keyIDString(keyID),
			"user_ids", ring.UserIDs, "parts", parts)
		return nil
	}
	return ring.Key(keyID)
}
