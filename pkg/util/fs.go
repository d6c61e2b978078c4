package util

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// FS is the filesystem the indexer and resolver work against.
type FS interface {
	// Glob lazily yields files under root matching a doublestar pattern
	// relative to root. A non-nil error ends the sequence.
	Glob(root, pattern string) iter.Seq2[string, error]
	// ReadFile returns the file's content as text.
	ReadFile(path string) (string, error)
	// Exists reports whether path is an existing regular file.
	Exists(path string) bool
	// Stat returns file info, used to invalidate cached parses.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS is the FS backed by the local filesystem.
type OSFS struct{}

var errStopGlob = errors.New("glob stopped")

func (OSFS) Glob(root, pattern string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := doublestar.GlobWalk(os.DirFS(root), pattern, func(p string, _ fs.DirEntry) error {
			if !yield(filepath.Join(root, filepath.FromSlash(p)), nil) {
				return errStopGlob
			}
			return nil
		}, doublestar.WithFilesOnly())
		if err != nil && !errors.Is(err, errStopGlob) {
			yield("", err)
		}
	}
}

func (OSFS) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (OSFS) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ValidatePattern reports whether a doublestar pattern is well formed.
func ValidatePattern(pattern string) bool {
	return doublestar.ValidatePattern(pattern)
}
