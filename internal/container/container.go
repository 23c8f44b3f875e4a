// Package container wires configuration, logging and backends into the
// versioning service.
package container

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/relicta-tech/versionit/internal/application/versioning"
	"github.com/relicta-tech/versionit/internal/config"
	"github.com/relicta-tech/versionit/internal/discovery"
	"github.com/relicta-tech/versionit/internal/domain/sourcecontrol"
	rperrors "github.com/relicta-tech/versionit/internal/errors"
	gitadapter "github.com/relicta-tech/versionit/internal/infrastructure/git"
)

// Container holds the services for one CLI invocation.
type Container struct {
	config   *config.Config
	logger   *log.Logger
	fs       afero.Fs
	registry *sourcecontrol.Registry
	service  *versioning.Service
}

// Option configures a Container.
type Option func(*Container)

// WithFs sets the filesystem used for project files.
func WithFs(fsys afero.Fs) Option {
	return func(c *Container) {
		if fsys != nil {
			c.fs = fsys
		}
	}
}

// WithRegistry replaces the default source-control backends.
func WithRegistry(r *sourcecontrol.Registry) Option {
	return func(c *Container) {
		c.registry = r
	}
}

// New creates a container. The default registry knows the git backend.
func New(cfg *config.Config, logger *log.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, rperrors.Config("container.New", "configuration is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	c := &Container{
		config: cfg,
		logger: logger,
		fs:     afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = DefaultRegistry()
	}

	c.service = versioning.NewService(
		versioning.WithFs(c.fs),
		versioning.WithLogger(c.logger),
		versioning.WithRegistry(c.registry),
	)
	return c, nil
}

// DefaultRegistry returns a registry with every built-in backend.
func DefaultRegistry() *sourcecontrol.Registry {
	r := sourcecontrol.NewRegistry()
	gitadapter.Register(r)
	return r
}

// Service returns the versioning service.
func (c *Container) Service() *versioning.Service {
	return c.service
}

// Registry returns the source-control registry.
func (c *Container) Registry() *sourcecontrol.Registry {
	return c.registry
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// RunOptions maps the configuration to options for a run in dir.
func (c *Container) RunOptions(dir string, dryRun bool) versioning.Options {
	v := c.config.Versioning
	return versioning.Options{
		Dir:           dir,
		NoSCM:         v.NoSCM,
		Message:       v.TagMessage,
		Commit:        v.Commit,
		CommitMessage: v.CommitMessage,
		TagPrefix:     v.TagPrefix,
		NoScripts:     !v.Scripts,
		DryRun:        dryRun,
		Discovery: discovery.Options{
			DataExtensions:   c.config.Discovery.DataExtensions,
			ScriptExtensions: c.config.Discovery.ScriptExtensions,
		},
	}
}
