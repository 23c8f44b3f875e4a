// Package git implements the source-control tagger on top of go-git.
package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/relicta-tech/versionit/internal/domain/sourcecontrol"
	"github.com/relicta-tech/versionit/internal/domain/version"
	rperrors "github.com/relicta-tech/versionit/internal/errors"
)

const (
	// Marker is the directory whose presence selects this backend.
	Marker = ".git"

	// BackendName identifies this backend in reports.
	BackendName = "git"

	fallbackName  = "versionit"
	fallbackEmail = "versionit@localhost"

	// maxListedPaths bounds how many dirty paths an error message names.
	maxListedPaths = 5
)

// Tagger tags versions in a git repository.
type Tagger struct {
	repo     *git.Repository
	root     string
	identity func() object.Signature
}

// Option configures a Tagger.
type Option func(*Tagger)

// WithSignature fixes the author, committer and tagger identity.
func WithSignature(name, email string) Option {
	return func(t *Tagger) {
		t.identity = func() object.Signature {
			return object.Signature{Name: name, Email: email, When: time.Now()}
		}
	}
}

// NewTagger opens the repository rooted at dir.
func NewTagger(dir string, opts ...Option) (*Tagger, error) {
	const op = "git.NewTagger"

	repo, err := git.PlainOpen(dir)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, rperrors.TagWrap(sourcecontrol.ErrNotARepository, op, "failed to open repository").WithPath(dir)
		}
		return nil, rperrors.TagWrap(err, op, "failed to open repository").WithPath(dir)
	}

	root := dir
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	t := &Tagger{repo: repo, root: root}
	t.identity = t.configIdentity
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Factory adapts NewTagger to sourcecontrol.TaggerFactory.
func Factory(dir string) (sourcecontrol.Tagger, error) {
	return NewTagger(dir)
}

// Register adds the git backend to r.
func Register(r *sourcecontrol.Registry) {
	r.Register(Marker, Factory)
}

// Name implements sourcecontrol.Tagger.
func (t *Tagger) Name() string {
	return BackendName
}

// Precheck fails when any tracked file has staged or unstaged changes.
// Untracked files do not make the tree dirty.
func (t *Tagger) Precheck(ctx context.Context) error {
	const op = "git.Precheck"

	if err := ctx.Err(); err != nil {
		return rperrors.Wrap(err, rperrors.KindCanceled, op, "precheck canceled")
	}

	wt, err := t.repo.Worktree()
	if err != nil {
		return rperrors.TagWrap(err, op, "failed to get worktree")
	}
	status, err := wt.Status()
	if err != nil {
		return rperrors.TagWrap(err, op, "failed to get worktree status")
	}

	dirty := dirtyPaths(status)
	if len(dirty) == 0 {
		return nil
	}

	listed := dirty
	if len(listed) > maxListedPaths {
		listed = append(listed[:maxListedPaths:maxListedPaths], fmt.Sprintf("and %d more", len(dirty)-maxListedPaths))
	}
	return rperrors.DirtyWorkingTreeWrap(sourcecontrol.ErrWorkingTreeDirty, op,
		"working directory not clean: "+strings.Join(listed, ", "))
}

func dirtyPaths(status git.Status) []string {
	var dirty []string
	for path, fs := range status {
		if fs == nil {
			continue
		}
		if fs.Staging == git.Untracked && fs.Worktree == git.Untracked {
			continue
		}
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		dirty = append(dirty, path)
	}
	sort.Strings(dirty)
	return dirty
}

// Tag creates an annotated tag at HEAD, committing opts.Files first when
// opts.Commit is set.
func (t *Tagger) Tag(ctx context.Context, v version.SemanticVersion, opts sourcecontrol.TagOptions) (*sourcecontrol.TagResult, error) {
	const op = "git.Tag"

	if err := ctx.Err(); err != nil {
		return nil, rperrors.Wrap(err, rperrors.KindCanceled, op, "tag canceled")
	}

	opts = opts.WithDefaults(v)
	sig := t.identity()
	result := &sourcecontrol.TagResult{Name: opts.TagName(v)}

	if opts.Commit && len(opts.Files) > 0 {
		committed, err := t.commit(opts.Files, opts.CommitMessage, sig)
		if err != nil {
			return nil, err
		}
		result.Committed = committed
	}

	head, err := t.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, rperrors.TagWrap(sourcecontrol.ErrNoCommits, op, "cannot tag "+result.Name)
		}
		return nil, rperrors.TagWrap(err, op, "failed to resolve HEAD")
	}
	result.Commit = head.Hash().String()

	_, err = t.repo.CreateTag(result.Name, head.Hash(), &git.CreateTagOptions{
		Tagger:  &sig,
		Message: opts.Message,
	})
	if err != nil {
		if errors.Is(err, git.ErrTagExists) {
			return nil, rperrors.TagWrap(fmt.Errorf("%w: %s", sourcecontrol.ErrTagAlreadyExists, result.Name), op, "failed to create tag")
		}
		return nil, rperrors.Wrapf(err, rperrors.KindTag, op, "failed to create tag %s", result.Name)
	}

	return result, nil
}

func (t *Tagger) commit(files []string, message string, sig object.Signature) (bool, error) {
	const op = "git.Commit"

	wt, err := t.repo.Worktree()
	if err != nil {
		return false, rperrors.TagWrap(err, op, "failed to get worktree")
	}

	for _, file := range files {
		rel, ok := t.repoRelative(file)
		if !ok {
			return false, rperrors.Tag(op, "file outside repository").WithPath(file)
		}
		if _, err := wt.Add(rel); err != nil {
			return false, rperrors.TagWrap(err, op, "failed to stage").WithPath(file)
		}
	}

	_, err = wt.Commit(message, &git.CommitOptions{Author: &sig})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return false, nil
		}
		return false, rperrors.TagWrap(err, op, "failed to commit")
	}
	return true, nil
}

// repoRelative returns file as a slash-separated path relative to the
// worktree root. Symlinked directories on either side are resolved first;
// the file itself is not, so a tracked symlink stays the path that is staged.
func (t *Tagger) repoRelative(file string) (string, bool) {
	root := t.root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	dir := filepath.Dir(file)
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}

	rel, err := filepath.Rel(root, filepath.Join(dir, filepath.Base(file)))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// configIdentity reads user.name and user.email from the repository and
// global git configuration.
func (t *Tagger) configIdentity() object.Signature {
	sig := object.Signature{Name: fallbackName, Email: fallbackEmail, When: time.Now()}

	cfg, err := t.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}
