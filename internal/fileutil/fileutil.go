// Package fileutil provides file helpers shared by the data and script writers.
// All functions operate on an afero.Fs so callers can swap the OS filesystem
// for an in-memory or read-only one.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// MaxFileSize bounds how much of a single candidate file is read.
const MaxFileSize int64 = 8 << 20

// DefaultPerm is used when the target of a write does not exist yet.
const DefaultPerm os.FileMode = 0o644

// maxSymlinkDepth bounds the symlink chains ResolveSymlinks follows.
const maxSymlinkDepth = 40

// ErrFileTooLarge is returned by ReadFileLimited when the file exceeds the limit.
var ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

// ReadFileLimited reads a file up to maxSize bytes.
// Returns an error wrapping ErrFileTooLarge if the file is bigger.
func ReadFileLimited(fs afero.Fs, path string, maxSize int64) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrFileTooLarge, info.Size(), maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: %d", ErrFileTooLarge, maxSize)
	}

	return data, nil
}

// FileMode returns the permission bits of path, or DefaultPerm if it does
// not exist.
func FileMode(fs afero.Fs, path string) os.FileMode {
	info, err := fs.Stat(path)
	if err != nil {
		return DefaultPerm
	}
	return info.Mode().Perm()
}

// ResolveSymlinks follows path through a chain of symlinks and returns the
// final target. Filesystems without symlink support, and paths that do not
// exist, return path unchanged.
func ResolveSymlinks(fs afero.Fs, path string) (string, error) {
	lstater, ok := fs.(afero.Lstater)
	if !ok {
		return path, nil
	}
	reader, ok := fs.(afero.LinkReader)
	if !ok {
		return path, nil
	}

	for range maxSymlinkDepth {
		info, lstatCalled, err := lstater.LstatIfPossible(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return path, nil
			}
			return "", err
		}
		if !lstatCalled || info.Mode()&os.ModeSymlink == 0 {
			return path, nil
		}

		target, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}
	return "", fmt.Errorf("%s: too many levels of symbolic links", path)
}

// AtomicWriteFile writes data to a temp file in the same directory and
// renames it over path, so readers never observe a partial write. When path
// is a symlink the link target is replaced and the link itself is kept.
func AtomicWriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	path, err := ResolveSymlinks(fs, path)
	if err != nil {
		return fmt.Errorf("failed to resolve symlink: %w", err)
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmpFile, err := afero.TempFile(fs, dir, "."+base+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = fs.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	tmpFile = nil

	if err := fs.Chmod(tmpPath, perm); err != nil {
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
