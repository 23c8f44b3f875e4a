// Package sourcecontrol defines the tagging capability a source-control
// backend provides, the registry that selects one per invocation, and the
// lifecycle a selected backend moves through.
package sourcecontrol

import "errors"

// Domain errors for source control operations.
var (
	// ErrNotARepository indicates the directory is not a repository of the backend.
	ErrNotARepository = errors.New("not a repository")

	// ErrNoCommits indicates there is no commit to tag.
	ErrNoCommits = errors.New("no commits found")

	// ErrTagAlreadyExists indicates the tag already exists.
	ErrTagAlreadyExists = errors.New("tag already exists")

	// ErrWorkingTreeDirty indicates the working tree has uncommitted changes.
	ErrWorkingTreeDirty = errors.New("working tree has uncommitted changes")

	// ErrNoTaggerSelected indicates a precheck or tag was attempted without a backend.
	ErrNoTaggerSelected = errors.New("no tagger selected")
)
