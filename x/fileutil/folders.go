package fileutil

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Vfs is the file system used by this package;
// tests may replace it with an in-memory implementation.
var Vfs = afero.NewOsFs()

// FolderExists ensures that folder exists
func FolderExists(dir string) error {
	if dir == "" {
		return errors.New("invalid parameter: dir")
	}
	stat, err := Vfs.Stat(dir)
	if err != nil {
		return errors.WithStack(err)
	}
	if !stat.IsDir() {
		return errors.Errorf("not a folder: %q", dir)
	}
	return nil
}

// FileExists ensures that file exists
func FileExists(file string) error {
	if file == "" {
		return errors.New("invalid parameter: file")
	}
	stat, err := Vfs.Stat(file)
	if err != nil {
		return errors.WithStack(err)
	}
	if stat.IsDir() {
		return errors.Errorf("not a file: %q", file)
	}
	return nil
}
