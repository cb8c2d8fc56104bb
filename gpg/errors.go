package gpg

import (
	"github.com/cockroachdb/errors"
)

// Resolution failures that callers may test with errors.Is.
// Absence of a matching key is not an error and is reported as a nil or
// empty result instead.
var (
	// ErrAmbiguousSource is returned when a keyring source specifies both
	// inline bytes and a resource name.
	ErrAmbiguousSource = errors.New("both keyring bytes and resource name specified")

	// ErrResourceNotFound is returned when a named keyring resource can not
	// be loaded.
	ErrResourceNotFound = errors.New("keyring resource not found")

	// ErrMalformedKeyring is returned when keyring bytes do not decode as a
	// keyring collection.
	ErrMalformedKeyring = errors.New("malformed keyring")
)
