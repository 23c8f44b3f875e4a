package versioning

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/relicta-tech/versionit/internal/datafile"
	"github.com/relicta-tech/versionit/internal/discovery"
	"github.com/relicta-tech/versionit/internal/domain/sourcecontrol"
	"github.com/relicta-tech/versionit/internal/domain/version"
	rperrors "github.com/relicta-tech/versionit/internal/errors"
	"github.com/relicta-tech/versionit/internal/script"
)

// Options configures a single Run.
type Options struct {
	// Dir is the project directory. Required.
	Dir string
	// NoSCM skips source-control detection, precheck and tagging.
	NoSCM bool
	// Message is the tag message; %s and {{version}} expand to the version.
	Message string
	// Commit commits the modified files before tagging.
	Commit bool
	// CommitMessage is the commit message; expanded like Message.
	CommitMessage string
	// TagPrefix is prepended to the version in the tag name. Empty means "v".
	TagPrefix string
	// NoScripts disables script patching.
	NoScripts bool
	// DryRun resolves and reports without writing files or tags.
	DryRun bool
	// Discovery selects the data and script extensions.
	Discovery discovery.Options
}

// Result reports what a Run resolved and changed.
type Result struct {
	Version     string                   `json:"version" yaml:"version"`
	Previous    string                   `json:"previous" yaml:"previous"`
	Command     string                   `json:"command" yaml:"command"`
	IsQuery     bool                     `json:"is_query" yaml:"is_query"`
	DataFiles   []string                 `json:"data_files,omitempty" yaml:"data_files,omitempty"`
	ScriptFiles []string                 `json:"script_files,omitempty" yaml:"script_files,omitempty"`
	Warnings    []string                 `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Tag         *sourcecontrol.TagResult `json:"tag,omitempty" yaml:"tag,omitempty"`
	SCM         string                   `json:"scm,omitempty" yaml:"scm,omitempty"`
	DryRun      bool                     `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

// Service runs version commands against a project directory.
type Service struct {
	fs       afero.Fs
	logger   *log.Logger
	registry *sourcecontrol.Registry
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithFs sets the filesystem. The default is the OS filesystem.
func WithFs(fsys afero.Fs) ServiceOption {
	return func(s *Service) {
		s.fs = fsys
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRegistry sets the source-control backends. The default registry is
// empty, so no tagging happens.
func WithRegistry(registry *sourcecontrol.Registry) ServiceOption {
	return func(s *Service) {
		s.registry = registry
	}
}

// NewService creates a Service.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		fs:       afero.NewOsFs(),
		logger:   log.New(io.Discard),
		registry: sourcecontrol.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run resolves command against the data files in opts.Dir and, unless the
// command is a query, writes the new version to every data file and script,
// then tags it in source control.
//
// Stages run in order: discover, load, resolve, precheck, write data files,
// patch scripts, tag. A dirty working tree stops the run before any write.
// When patching or tagging fails, files already written stay written and
// the partial Result is returned with the error.
func (s *Service) Run(ctx context.Context, command string, opts Options) (*Result, error) {
	const op = "versioning.Run"

	if opts.Dir == "" {
		return nil, rperrors.Validation(op, "project directory is required")
	}
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, rperrors.IOWrap(err, op, "failed to resolve directory").WithPath(opts.Dir)
	}

	cmd, err := ParseCommand(command)
	if err != nil {
		return nil, err
	}

	set, err := discovery.Discover(s.fs, dir, opts.Discovery)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("discovered files", "dir", dir, "data", len(set.DataFiles), "scripts", len(set.ScriptFiles))

	files, err := datafile.Load(ctx, s.fs, set.DataFiles)
	if err != nil {
		return nil, err
	}

	result := &Result{DryRun: opts.DryRun}
	discovered := make([]*semver.Version, len(files))
	for i, f := range files {
		if !f.Parsed() {
			s.logger.Warn("ignoring unparseable version", "file", f.Path, "version", f.RawVersion)
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: unparseable version %q", f.Path, f.RawVersion))
			continue
		}
		discovered[i] = f.Version
		s.logger.Debug("found version", "file", f.Path, "version", f.Version.String())
	}

	res := ResolveCommand(cmd, discovered)
	result.Command = cmd.Kind().String()
	if raw := cmd.Raw(); raw != "" {
		result.Command = raw
	}
	result.Previous = res.Current.String()
	result.Version = res.Next.String()
	result.IsQuery = res.IsQuery()
	if result.IsQuery {
		return result, nil
	}

	session, err := s.precheck(ctx, dir, opts, result)
	if err != nil {
		return nil, err
	}

	newVersion := res.Next.String()
	s.logger.Info("writing version", "from", result.Previous, "to", newVersion, "dry_run", opts.DryRun)

	result.DataFiles, err = datafile.Apply(ctx, s.fs, files, newVersion, datafile.ApplyOptions{DryRun: opts.DryRun})
	if err != nil {
		return nil, err
	}

	if !opts.NoScripts {
		report, err := script.Apply(ctx, s.fs, dir, newVersion, script.ApplyOptions{
			Discovery: opts.Discovery,
			DryRun:    opts.DryRun,
		})
		if err != nil {
			return result, err
		}
		result.ScriptFiles = report.Modified
		for _, w := range report.Warnings {
			s.logger.Warn("script not patched", "file", w.Path, "error", w.Err)
			result.Warnings = append(result.Warnings, w.String())
		}
	}

	if session == nil {
		return result, nil
	}

	tagOpts := sourcecontrol.TagOptions{
		Prefix:        opts.TagPrefix,
		Message:       sourcecontrol.ExpandMessage(opts.Message, res.Next),
		Commit:        opts.Commit,
		CommitMessage: sourcecontrol.ExpandMessage(opts.CommitMessage, res.Next),
		Files:         append(append([]string{}, result.DataFiles...), result.ScriptFiles...),
	}
	if opts.DryRun {
		result.Tag = &sourcecontrol.TagResult{Name: tagOpts.WithDefaults(res.Next).TagName(res.Next)}
		return result, nil
	}

	tag, err := session.Tag(ctx, res.Next, tagOpts)
	if err != nil {
		return result, err
	}
	result.Tag = tag
	s.logger.Info("tagged", "tag", tag.Name, "commit", tag.Commit, "committed", tag.Committed)
	return result, nil
}

// precheck selects a source-control backend and verifies the working tree.
// It returns a nil session when tagging should be skipped.
func (s *Service) precheck(ctx context.Context, dir string, opts Options, result *Result) (*sourcecontrol.Session, error) {
	const op = "versioning.Run"

	if opts.NoSCM {
		return nil, nil
	}

	session, err := sourcecontrol.NewSession(s.registry, s.fs, dir)
	if err != nil {
		return nil, rperrors.InternalWrap(err, op, "failed to start source control session")
	}

	detection := session.Detect()
	if detection.Err != nil {
		s.logger.Warn("source control backend unavailable", "marker", detection.Marker, "error", detection.Err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", detection.Marker, detection.Err))
	}
	if !detection.Selected() {
		s.logger.Debug("no source control detected", "dir", dir)
		return nil, nil
	}

	result.SCM = session.Backend()
	if err := session.Precheck(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// Query returns the current version in dir without writing anything.
func (s *Service) Query(ctx context.Context, dir string) (version.SemanticVersion, error) {
	res, err := s.Run(ctx, "", Options{Dir: dir, NoSCM: true})
	if err != nil {
		return version.Zero, err
	}
	v, _ := version.Parse(res.Version)
	return v, nil
}
