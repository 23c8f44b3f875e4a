package sourcecontrol

import (
	"context"
	"strings"

	"github.com/relicta-tech/versionit/internal/domain/version"
)

// DefaultTagPrefix is applied by TagOptions.WithDefaults.
const DefaultTagPrefix = "v"

// TagOptions controls how a version is recorded in source control.
type TagOptions struct {
	// Prefix is prepended to the version to form the tag name. Empty means "v".
	Prefix string
	// Message is the annotated tag message. Empty means "Bump version to <version>".
	Message string
	// Commit stages Files and commits them before tagging.
	Commit bool
	// CommitMessage is the commit message. Empty means "<version>".
	CommitMessage string
	// Files are the absolute paths modified by the run.
	Files []string
}

// WithDefaults fills unset fields for v.
func (o TagOptions) WithDefaults(v version.SemanticVersion) TagOptions {
	if o.Prefix == "" {
		o.Prefix = DefaultTagPrefix
	}
	if o.Message == "" {
		o.Message = DefaultTagMessage(v)
	}
	if o.CommitMessage == "" {
		o.CommitMessage = v.String()
	}
	return o
}

// TagName returns the tag name for v.
func (o TagOptions) TagName(v version.SemanticVersion) string {
	return v.TagString(o.Prefix)
}

// DefaultTagMessage returns the message used when none is configured.
func DefaultTagMessage(v version.SemanticVersion) string {
	return "Bump version to " + v.String()
}

// ExpandMessage replaces %s and {{version}} in a configured message with v.
func ExpandMessage(msg string, v version.SemanticVersion) string {
	msg = strings.ReplaceAll(msg, "{{version}}", v.String())
	return strings.ReplaceAll(msg, "%s", v.String())
}

// TagResult describes what a Tag call recorded.
type TagResult struct {
	Name      string `json:"name" yaml:"name"`
	Commit    string `json:"commit" yaml:"commit"`
	Committed bool   `json:"committed" yaml:"committed"`
}

// Tagger is the capability a source-control backend provides.
type Tagger interface {
	// Name identifies the backend, e.g. "git".
	Name() string
	// Precheck fails with ErrWorkingTreeDirty when tracked files have
	// uncommitted modifications.
	Precheck(ctx context.Context) error
	// Tag records v, optionally committing opts.Files first.
	Tag(ctx context.Context, v version.SemanticVersion, opts TagOptions) (*TagResult, error)
}
