// Package discovery finds version-bearing candidate files in a project directory.
package discovery

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	rperrors "github.com/relicta-tech/versionit/internal/errors"
)

// Default extensions for data and script candidates.
var (
	DefaultDataExtensions   = []string{".json"}
	DefaultScriptExtensions = []string{".js"}
)

// Options configures which extensions count as data or script files.
// Extensions are compared case-insensitively; a missing leading dot is added.
type Options struct {
	DataExtensions   []string
	ScriptExtensions []string
}

// DefaultOptions returns the default discovery options.
func DefaultOptions() Options {
	return Options{
		DataExtensions:   DefaultDataExtensions,
		ScriptExtensions: DefaultScriptExtensions,
	}
}

// Set is the result of one discovery pass over a directory.
// Paths are absolute when dir was absolute, in directory listing order.
type Set struct {
	Dir         string
	DataFiles   []string
	ScriptFiles []string
}

// Empty reports whether no candidates were found.
func (s *Set) Empty() bool {
	return len(s.DataFiles) == 0 && len(s.ScriptFiles) == 0
}

// Discover lists the immediate children of dir and classifies regular files
// by extension. Symlinks count when their target is a regular file. A missing
// directory yields an empty set.
func Discover(fsys afero.Fs, dir string, opts Options) (*Set, error) {
	const op = "discovery.Discover"

	set := &Set{Dir: dir}

	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return set, nil
		}
		return nil, rperrors.IOWrap(err, op, "failed to list directory").WithPath(dir)
	}

	dataExt := normalizeExtensions(opts.DataExtensions, DefaultDataExtensions)
	scriptExt := normalizeExtensions(opts.ScriptExtensions, DefaultScriptExtensions)

	for _, entry := range entries {
		if !isRegular(fsys, dir, entry) {
			continue
		}
		name := entry.Name()
		switch {
		case hasExtension(name, dataExt):
			set.DataFiles = append(set.DataFiles, filepath.Join(dir, name))
		case hasExtension(name, scriptExt):
			set.ScriptFiles = append(set.ScriptFiles, filepath.Join(dir, name))
		}
	}

	return set, nil
}

// ScriptFiles re-lists dir and returns only the script candidates.
func ScriptFiles(fsys afero.Fs, dir string, opts Options) ([]string, error) {
	set, err := Discover(fsys, dir, opts)
	if err != nil {
		return nil, err
	}
	return set.ScriptFiles, nil
}

// isRegular reports whether entry is a regular file, following a symlink
// to its target. Dangling links are skipped.
func isRegular(fsys afero.Fs, dir string, entry fs.FileInfo) bool {
	if entry.Mode().IsRegular() {
		return true
	}
	if entry.Mode()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := fsys.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

func normalizeExtensions(exts, fallback []string) []string {
	if len(exts) == 0 {
		exts = fallback
	}
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
