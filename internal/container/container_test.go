package container

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicta-tech/versionit/internal/config"
	"github.com/relicta-tech/versionit/internal/domain/sourcecontrol"
	rperrors "github.com/relicta-tech/versionit/internal/errors"
)

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)
	assert.True(t, rperrors.IsKind(err, rperrors.KindConfig))
}

func TestNew_DefaultRegistryHasGit(t *testing.T) {
	c, err := New(config.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".git"}, c.Registry().Markers())
	assert.NotNil(t, c.Service())
}

func TestNew_CustomRegistry(t *testing.T) {
	r := sourcecontrol.NewRegistry()
	c, err := New(config.DefaultConfig(), nil, WithRegistry(r))
	require.NoError(t, err)
	assert.Same(t, r, c.Registry())
}

func TestRunOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Versioning.TagPrefix = "rel-"
	cfg.Versioning.TagMessage = "Release %s"
	cfg.Versioning.Commit = true
	cfg.Versioning.CommitMessage = "chore: %s"
	cfg.Versioning.NoSCM = true
	cfg.Versioning.Scripts = false
	cfg.Discovery.ScriptExtensions = []string{".mjs"}

	c, err := New(cfg, nil)
	require.NoError(t, err)

	opts := c.RunOptions("/proj", true)
	assert.Equal(t, "/proj", opts.Dir)
	assert.Equal(t, "rel-", opts.TagPrefix)
	assert.Equal(t, "Release %s", opts.Message)
	assert.True(t, opts.Commit)
	assert.Equal(t, "chore: %s", opts.CommitMessage)
	assert.True(t, opts.NoSCM)
	assert.True(t, opts.NoScripts)
	assert.True(t, opts.DryRun)
	assert.Equal(t, []string{".json"}, opts.Discovery.DataExtensions)
	assert.Equal(t, []string{".mjs"}, opts.Discovery.ScriptExtensions)
}

func TestService_UsesContainerFsAndLogger(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/proj/package.json", []byte(`{"version":"1.0.0"}`), 0o644))

	var logs bytes.Buffer
	logger := log.New(&logs)
	logger.SetLevel(log.DebugLevel)

	c, err := New(config.DefaultConfig(), logger, WithFs(fsys))
	require.NoError(t, err)

	res, err := c.Service().Run(context.Background(), "bump", c.RunOptions("/proj", false))
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", res.Version)
	assert.Contains(t, logs.String(), "writing version")
}
