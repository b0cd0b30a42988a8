package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// errFound stops the walk once a match has been recorded
var errFound = errors.New("found")

// FindFile walks root depth-first, in lexical order within each directory, and
// returns the path of the first file whose base name equals name. A missing
// match is reported through found, never as an error; err is reserved for walk
// failures such as an unreadable or missing root.
func FindFile(fsys afero.Fs, root, name string) (path string, found bool, err error) {
	walkErr := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && info.Name() == name {
			path = p
			return errFound
		}
		return nil
	})

	switch {
	case errors.Is(walkErr, errFound):
		return path, true, nil
	case errors.Is(walkErr, fs.ErrNotExist):
		return "", false, nil
	case walkErr != nil:
		return "", false, fmt.Errorf("failed to search %s for %s: %w", root, name, walkErr)
	}
	return "", false, nil
}

// CleanPath sanitizes a relative path and rejects directory traversal
func CleanPath(path string) (string, error) {
	cleaned := filepath.Clean(path)

	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path %s: contains directory traversal", path)
	}

	return cleaned, nil
}

// JoinPath joins elem onto base and ensures the result stays inside base
func JoinPath(base, elem string) (string, error) {
	if filepath.IsAbs(elem) {
		return "", fmt.Errorf("invalid path %s: must be relative to %s", elem, base)
	}

	rel, err := CleanPath(elem)
	if err != nil {
		return "", err
	}

	return filepath.Join(base, rel), nil
}
