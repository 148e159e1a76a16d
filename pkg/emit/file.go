// Package emit writes generated artifacts to disk.
package emit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrStale is returned in check mode when an artifact is missing or out of date.
var ErrStale = errors.New("artifact is stale")

// WriteOptions controls how WriteFile and Remove touch the filesystem.
type WriteOptions struct {
	// Check reports ErrStale instead of writing.
	Check bool
}

// WriteFile replaces path with data. Unchanged content is not rewritten. The new
// content goes to a sibling temp file first and is renamed over path, so readers
// see either the old artifact or the new one.
func WriteFile(path string, data []byte, opt WriteOptions) (wrote bool, err error) {
	existing, readErr := os.ReadFile(path)
	switch {
	case readErr == nil:
		if bytes.Equal(existing, data) {
			return false, nil
		}
		if opt.Check {
			return false, fmt.Errorf("%w: %s differs", ErrStale, path)
		}
	case !os.IsNotExist(readErr):
		return false, fmt.Errorf("read existing: %w", readErr)
	case opt.Check:
		return false, fmt.Errorf("%w: %s would be created", ErrStale, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := writeTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp", bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return false, fmt.Errorf("rename tmp: %w", err)
	}
	return true, nil
}

// writeTemp copies src into a new temp file in dir and returns its name. On any
// failure the temp file is removed.
func writeTemp(dir, pattern string, src io.Reader) (name string, err error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = io.Copy(f, src); err != nil {
		return "", err
	}
	if err = f.Chmod(0o644); err != nil {
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// Remove deletes path. A missing file is not an error. In check mode an existing
// file is reported as ErrStale.
func Remove(path string, opt WriteOptions) (removed bool, err error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if opt.Check {
		return false, fmt.Errorf("%w: %s should not exist", ErrStale, path)
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("remove %s: %w", path, err)
	}
	return true, nil
}
