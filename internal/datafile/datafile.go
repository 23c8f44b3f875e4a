// Package datafile reads and rewrites JSON metadata files that carry a
// top-level "version" field, such as package.json or bower.json.
package datafile

import (
	"context"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"golang.org/x/sync/errgroup"

	"github.com/relicta-tech/versionit/internal/domain/version"
	rperrors "github.com/relicta-tech/versionit/internal/errors"
	"github.com/relicta-tech/versionit/internal/fileutil"
)

// VersionKey is the top-level field read and written.
const VersionKey = "version"

// prettyOptions keeps key order and puts every array element on its own line.
var prettyOptions = &pretty.Options{Width: 0, Indent: "  ", SortKeys: false}

// File is a data file exposing a version field.
type File struct {
	// Path is the file location.
	Path string
	// Data holds the contents as read.
	Data []byte
	// RawVersion is the version field's value as text.
	RawVersion string
	// Version is the parsed value, nil when RawVersion is not a version.
	Version *semver.Version
	// Perm is the file's permission bits, reused on write.
	Perm os.FileMode
}

// Parsed reports whether the version field holds a usable version.
func (f *File) Parsed() bool {
	return f.Version != nil
}

// Load reads every path concurrently and returns the files with a top-level
// version key, in the order of paths. Any file that is not valid JSON fails
// the whole load with a parse error.
func Load(ctx context.Context, fsys afero.Fs, paths []string) ([]*File, error) {
	results := make([]*File, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := loadFile(fsys, path)
			if err != nil {
				return err
			}
			results[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, rperrors.FromContext(err, "datafile.Load")
	}

	files := make([]*File, 0, len(results))
	for _, f := range results {
		if f != nil {
			files = append(files, f)
		}
	}
	return files, nil
}

func loadFile(fsys afero.Fs, path string) (*File, error) {
	const op = "datafile.Load"

	data, err := fileutil.ReadFileLimited(fsys, path, fileutil.MaxFileSize)
	if err != nil {
		return nil, rperrors.IOWrap(err, op, "failed to read").WithPath(path)
	}

	if !gjson.ValidBytes(data) {
		return nil, rperrors.Parse(op, "invalid JSON in").WithPath(path)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, nil
	}
	field := root.Get(VersionKey)
	if !field.Exists() {
		return nil, nil
	}

	f := &File{
		Path: path,
		Data: data,
		Perm: fileutil.FileMode(fsys, path),
	}
	f.RawVersion = field.Raw
	if field.Type == gjson.String {
		f.RawVersion = field.String()
	}
	if field.Type == gjson.String || field.Type == gjson.Number {
		if v, err := version.ParseLoose(f.RawVersion); err == nil {
			f.Version = v
		}
	}
	return f, nil
}

// Rewrite replaces the top-level version field of data with newVersion and
// re-indents the document with two spaces. Key order is preserved.
func Rewrite(data []byte, newVersion string) ([]byte, error) {
	const op = "datafile.Rewrite"

	updated, err := sjson.SetBytes(data, VersionKey, newVersion)
	if err != nil {
		return nil, rperrors.InternalWrap(err, op, "failed to set version")
	}
	return pretty.PrettyOptions(updated, prettyOptions), nil
}

// ApplyOptions configures Apply.
type ApplyOptions struct {
	// DryRun computes the new contents without writing them.
	DryRun bool
}

// Apply writes newVersion into every file concurrently and returns the
// paths written, in input order. The first failure is returned; files
// already written stay written.
func Apply(ctx context.Context, fsys afero.Fs, files []*File, newVersion string, opts ApplyOptions) ([]string, error) {
	const op = "datafile.Apply"

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := Rewrite(f.Data, newVersion)
			if err != nil {
				return rperrors.Wrap(err, rperrors.GetKind(err), op, "failed to rewrite").WithPath(f.Path)
			}
			if opts.DryRun {
				return nil
			}
			if err := fileutil.AtomicWriteFile(fsys, f.Path, out, f.Perm); err != nil {
				return rperrors.IOWrap(err, op, "failed to write").WithPath(f.Path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, rperrors.FromContext(err, op)
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths, nil
}

