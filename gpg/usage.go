package gpg

import (
	"github.com/effective-security/xlog"
)

// verdict is the three-valued outcome of checking a key's declared usage
// flags: allowed when a signature declares one of the expected flags,
// denied when flags are declared but none match, unknown when no
// signature declares flags at all. Unknown is treated as permissive by
// the callers.
type verdict int

const (
	verdictUnknown verdict = iota
	verdictAllowed
	verdictDenied
)

// flagsVerdict scans all signatures on a key against the expected flags.
// A signature without a key flags subpacket does not count as "flags
// present"; a subpacket with a zero value does not either.
func flagsVerdict(sigs []Signature, expected ...KeyFlags) verdict {
	containsFlags := false
	for _, sig := range sigs {
		if !sig.FlagsPresent {
			continue
		}
		if sig.Flags != 0 {
			containsFlags = true
		}
		for _, want := range expected {
			if sig.Flags&want == want {
				return verdictAllowed
			}
		}
	}
	if containsFlags {
		return verdictDenied
	}
	return verdictUnknown
}

// CanEncrypt reports whether the key may be used for encryption: the
// algorithm must be encryption capable, and the declared key flags, when
// present, must include encrypt-communications or encrypt-storage.
func (k *Key) CanEncrypt() bool {
	if !k.Algorithm.CanEncrypt() {
		return false
	}
	if flagsVerdict(k.Signatures, FlagEncryptCommunications, FlagEncryptStorage) == verdictDenied {
		logger.KV(xlog.DEBUG, "reason", "key_flags", "usage", "encryption", "id", k.IDString())
		return false
	}
	return true
}

// CanSign reports whether the key may be used for signing: the algorithm
// must be in the signing set, and the declared key flags, when present,
// must include sign-data.
func (k *Key) CanSign() bool {
	switch k.Algorithm {
	case AlgoRSA, AlgoRSASignOnly, AlgoDSA, AlgoECDSA, AlgoElGamal:
	default:
		return false
	}
	if flagsVerdict(k.Signatures, FlagSign) == verdictDenied {
		logger.KV(xlog.DEBUG, "reason", "key_flags", "usage", "signing", "id", k.IDString())
		return false
	}
	return true
}
