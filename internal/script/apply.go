package script

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/relicta-tech/versionit/internal/discovery"
	rperrors "github.com/relicta-tech/versionit/internal/errors"
	"github.com/relicta-tech/versionit/internal/fileutil"
)

// FileWarning is a per-file problem that did not stop the run.
type FileWarning struct {
	Path string `json:"path" yaml:"path"`
	Err  error  `json:"-" yaml:"-"`
}

// String implements fmt.Stringer.
func (w FileWarning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// Report summarizes a script pass.
type Report struct {
	// Modified lists the scripts that contained a version literal, in
	// directory order.
	Modified []string
	// Warnings lists scripts that could not be parsed.
	Warnings []FileWarning
}

// ApplyOptions configures Apply.
type ApplyOptions struct {
	Discovery discovery.Options
	// DryRun patches in memory only.
	DryRun bool
}

type outcome struct {
	modified bool
	warning  error
}

// Apply patches every script file in dir with newVersion. Scripts that fail
// to parse are reported as warnings and left untouched; read and write
// failures abort with an IO error.
func Apply(ctx context.Context, fsys afero.Fs, dir, newVersion string, opts ApplyOptions) (*Report, error) {
	const op = "script.Apply"

	paths, err := discovery.ScriptFiles(fsys, dir, opts.Discovery)
	if err != nil {
		return nil, err
	}

	outcomes := make([]outcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := patchFile(fsys, path, newVersion, opts.DryRun)
			if err != nil {
				return err
			}
			outcomes[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, rperrors.FromContext(err, op)
	}

	report := &Report{}
	for i, o := range outcomes {
		switch {
		case o.warning != nil:
			report.Warnings = append(report.Warnings, FileWarning{Path: paths[i], Err: o.warning})
		case o.modified:
			report.Modified = append(report.Modified, paths[i])
		}
	}
	return report, nil
}

func patchFile(fsys afero.Fs, path, newVersion string, dryRun bool) (outcome, error) {
	const op = "script.Apply"

	src, err := fileutil.ReadFileLimited(fsys, path, fileutil.MaxFileSize)
	if err != nil {
		return outcome{}, rperrors.IOWrap(err, op, "failed to read").WithPath(path)
	}

	out, found, err := Patch(src, newVersion)
	if err != nil {
		return outcome{warning: err}, nil
	}
	if !found {
		return outcome{}, nil
	}
	if dryRun {
		return outcome{modified: true}, nil
	}

	if err := fileutil.AtomicWriteFile(fsys, path, out, fileutil.FileMode(fsys, path)); err != nil {
		return outcome{}, rperrors.IOWrap(err, op, "failed to write").WithPath(path)
	}
	return outcome{modified: true}, nil
}
