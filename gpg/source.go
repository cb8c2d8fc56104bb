package gpg

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/effective-security/xpgp/metricskey"
	"github.com/effective-security/xpgp/x/fileutil"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xpgp", "gpg")

// Purpose names what a keyring is being resolved for; it is included in
// error messages only.
type Purpose string

// Purposes
const (
	PurposeEncryption Purpose = "encryption"
	PurposeSignature  Purpose = "signature"
)

// Loader loads named keyring resources.
type Loader interface {
	LoadResource(ctx context.Context, name string) (io.ReadCloser, error)
}

// FileLoader loads keyring resources from the file system. Relative names
// are resolved against Dir when it is set.
type FileLoader struct {
	Dir string
}

// LoadResource opens the named keyring file.
func (l FileLoader) LoadResource(_ context.Context, name string) (io.ReadCloser, error) {
	path := name
	if l.Dir != "" && !filepath.IsAbs(name) {
		path = filepath.Join(l.Dir, name)
	}
	if err := fileutil.FileExists(path); err != nil {
		return nil, errors.Mark(errors.WithMessagef(err, "resource %q", name), ErrResourceNotFound)
	}
	f, err := fileutil.Vfs.Open(path)
	if err != nil {
		return nil, errors.Mark(errors.WithMessagef(err, "resource %q", name), ErrResourceNotFound)
	}
	return f, nil
}

// Source specifies keyring material as either inline bytes or a named
// resource; exactly one must be set.
type Source struct {
	Bytes    []byte
	Resource string
}

// Open returns a reader over the keyring material. The caller must close
// the reader on all paths.
func (s Source) Open(ctx context.Context, purpose Purpose, loader Loader) (io.ReadCloser, error) {
	if s.Bytes != nil && s.Resource != "" {
		return nil, errors.Mark(
			errors.Errorf("either specify the %s keyring resource name or the keyring bytes, not both", purpose),
			ErrAmbiguousSource)
	}
	if s.Bytes != nil {
		return io.NopCloser(bytes.NewReader(s.Bytes)), nil
	}
	if loader == nil {
		loader = FileLoader{}
	}
	return loader.LoadResource(ctx, s.Resource)
}

// LoadCollection opens the source, decodes the keyring collection and
// closes the stream on all paths, including decode failure.
func LoadCollection(ctx context.Context, src Source, purpose Purpose, loader Loader) (*Collection, error) {
	kind := "bytes"
	if src.Resource != "" {
		kind = "resource"
	}
	defer metricskey.PerfKeyringDecode.MeasureSince(time.Now(), kind)

	r, err := src.Open(ctx, purpose, loader)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	col, err := Decode(r)
	if err != nil {
		return nil, err
	}
	logger.KV(xlog.DEBUG, "source", kind, "purpose", purpose, "rings", len(col.Rings))
	return col, nil
}
