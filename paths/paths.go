// Package paths canonicalizes file paths. The canonical absolute form
// is the identity of a file everywhere in the index; comparisons over
// canonical paths are case insensitive.
package paths

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrBadPath means src could not be converted to a native path or
	// the OS rejected it.
	ErrBadPath = errors.New("paths: bad path")

	// ErrNotFound means attributes were requested and the target does
	// not exist.
	ErrNotFound = errors.New("paths: not found")
)

// Canonicalize returns the absolute, cleaned form of src. It is
// idempotent: canonicalizing a canonical path returns it unchanged.
func Canonicalize(src string) (string, error) {
	if src == "" || strings.IndexByte(src, 0) >= 0 {
		return "", ErrBadPath
	}
	dst, err := filepath.Abs(filepath.FromSlash(src))
	if err != nil {
		return "", ErrBadPath
	}
	return dst, nil
}

// CanonicalizeStat canonicalizes src and reports whether the target is
// a directory.
func CanonicalizeStat(src string) (string, bool, error) {
	dst, err := Canonicalize(src)
	if err != nil {
		return "", false, err
	}
	fi, err := os.Stat(dst)
	if err != nil {
		return "", false, ErrNotFound
	}
	return dst, fi.IsDir(), nil
}
