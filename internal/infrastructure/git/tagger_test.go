package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicta-tech/versionit/internal/domain/sourcecontrol"
	"github.com/relicta-tech/versionit/internal/domain/version"
	rperrors "github.com/relicta-tech/versionit/internal/errors"
)

func TestNewTagger_NotARepository(t *testing.T) {
	_, err := NewTagger(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, sourcecontrol.ErrNotARepository)
	assert.True(t, rperrors.IsKind(err, rperrors.KindTag))
}

func TestTagger_Name(t *testing.T) {
	h := newTestRepo(t)
	assert.Equal(t, "git", h.tagger().Name())
}

func TestPrecheck(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(h *testRepoHelper)
		wantDirty bool
	}{
		{
			name:  "clean tree",
			setup: func(*testRepoHelper) {},
		},
		{
			name: "untracked file is ignored",
			setup: func(h *testRepoHelper) {
				h.write("notes.txt", "scratch")
			},
		},
		{
			name: "modified tracked file",
			setup: func(h *testRepoHelper) {
				h.write("package.json", `{"version":"9.9.9"}`)
			},
			wantDirty: true,
		},
		{
			name: "staged new file",
			setup: func(h *testRepoHelper) {
				h.write("index.js", "module.exports = {};")
				wt, err := h.repo.Worktree()
				require.NoError(h.t, err)
				_, err = wt.Add("index.js")
				require.NoError(h.t, err)
			},
			wantDirty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRepo(t)
			h.write("package.json", `{"version":"1.0.0"}`)
			h.commitFiles("initial", "package.json")
			tt.setup(h)

			err := h.tagger().Precheck(context.Background())
			if !tt.wantDirty {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, sourcecontrol.ErrWorkingTreeDirty)
			assert.True(t, rperrors.IsKind(err, rperrors.KindDirtyWorkingTree))
		})
	}
}

func TestPrecheck_ListsDirtyPaths(t *testing.T) {
	h := newTestRepo(t)
	names := []string{"a.json", "b.json", "c.json", "d.json", "e.json", "f.json", "g.json"}
	for _, n := range names {
		h.write(n, "{}")
	}
	h.commitFiles("initial", names...)
	for _, n := range names {
		h.write(n, `{"changed":true}`)
	}

	err := h.tagger().Precheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.json, b.json")
	assert.Contains(t, err.Error(), "and 2 more")
	assert.NotContains(t, err.Error(), "g.json")
}

func TestPrecheck_Canceled(t *testing.T) {
	h := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.tagger().Precheck(ctx)
	assert.True(t, rperrors.IsKind(err, rperrors.KindCanceled))
}

func TestTag_CreatesAnnotatedTag(t *testing.T) {
	h := newTestRepo(t)
	h.write("package.json", `{"version":"1.0.0"}`)
	head := h.commitFiles("initial", "package.json")

	res, err := h.tagger().Tag(context.Background(), version.MustParse("1.0.1"), sourcecontrol.TagOptions{})
	require.NoError(t, err)
	assert.Equal(t, "v1.0.1", res.Name)
	assert.Equal(t, head, res.Commit)
	assert.False(t, res.Committed)

	ref, err := h.repo.Tag("v1.0.1")
	require.NoError(t, err)
	tagObj, err := h.repo.TagObject(ref.Hash())
	require.NoError(t, err, "tag should be annotated")
	assert.Equal(t, "Bump version to 1.0.1", strings.TrimSpace(tagObj.Message))
	assert.Equal(t, "Release Bot", tagObj.Tagger.Name)
	assert.Equal(t, head, tagObj.Target.String())
}

func TestTag_CustomPrefixAndMessage(t *testing.T) {
	h := newTestRepo(t)
	h.write("package.json", `{"version":"1.0.0"}`)
	h.commitFiles("initial", "package.json")

	res, err := h.tagger().Tag(context.Background(), version.MustParse("2.0.0"), sourcecontrol.TagOptions{
		Prefix:  "release-",
		Message: "Major release",
	})
	require.NoError(t, err)
	assert.Equal(t, "release-2.0.0", res.Name)

	ref, err := h.repo.Tag("release-2.0.0")
	require.NoError(t, err)
	tagObj, err := h.repo.TagObject(ref.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Major release", strings.TrimSpace(tagObj.Message))
}

func TestTag_CommitsModifiedFiles(t *testing.T) {
	h := newTestRepo(t)
	h.write("package.json", `{"version":"1.0.0"}`)
	initial := h.commitFiles("initial", "package.json")
	path := h.write("package.json", `{"version":"1.1.0"}`)

	res, err := h.tagger().Tag(context.Background(), version.MustParse("1.1.0"), sourcecontrol.TagOptions{
		Commit: true,
		Files:  []string{path},
	})
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.NotEqual(t, initial, res.Commit)

	commit, err := h.repo.CommitObject(plumbing.NewHash(res.Commit))
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", strings.TrimSpace(commit.Message))
	assert.Equal(t, "Release Bot", commit.Author.Name)

	assert.NoError(t, h.tagger().Precheck(context.Background()), "tree should be clean after commit")
}

func TestTag_CommitWithNothingToCommit(t *testing.T) {
	h := newTestRepo(t)
	path := h.write("package.json", `{"version":"1.0.0"}`)
	initial := h.commitFiles("initial", "package.json")

	res, err := h.tagger().Tag(context.Background(), version.MustParse("1.0.0"), sourcecontrol.TagOptions{
		Commit: true,
		Files:  []string{path},
	})
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.Equal(t, initial, res.Commit)
}

func TestTag_CommitsThroughSymlinkedDirectory(t *testing.T) {
	tests := []struct {
		name      string
		openLink  bool
		filesLink bool
	}{
		{name: "files named through link", filesLink: true},
		{name: "repository opened through link", openLink: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRepo(t)
			h.write("package.json", `{"version":"1.0.0"}`)
			h.commitFiles("initial", "package.json")
			h.write("package.json", `{"version":"1.0.1"}`)

			link := filepath.Join(t.TempDir(), "project")
			require.NoError(t, os.Symlink(h.repoDir, link))

			openDir, filesDir := h.repoDir, h.repoDir
			if tt.openLink {
				openDir = link
			}
			if tt.filesLink {
				filesDir = link
			}

			tg, err := NewTagger(openDir, WithSignature("Release Bot", "bot@example.com"))
			require.NoError(t, err)

			res, err := tg.Tag(context.Background(), version.MustParse("1.0.1"), sourcecontrol.TagOptions{
				Commit: true,
				Files:  []string{filepath.Join(filesDir, "package.json")},
			})
			require.NoError(t, err)
			assert.True(t, res.Committed)
			assert.NoError(t, h.tagger().Precheck(context.Background()), "tree should be clean after commit")
		})
	}
}

func TestTag_FileOutsideRepository(t *testing.T) {
	h := newTestRepo(t)
	h.write("package.json", `{"version":"1.0.0"}`)
	h.commitFiles("initial", "package.json")

	_, err := h.tagger().Tag(context.Background(), version.MustParse("1.0.1"), sourcecontrol.TagOptions{
		Commit: true,
		Files:  []string{"/definitely/elsewhere/package.json"},
	})
	require.Error(t, err)
	assert.True(t, rperrors.IsKind(err, rperrors.KindTag))
}

func TestTag_AlreadyExists(t *testing.T) {
	h := newTestRepo(t)
	h.write("package.json", `{"version":"1.0.0"}`)
	h.commitFiles("initial", "package.json")
	tg := h.tagger()

	_, err := tg.Tag(context.Background(), version.MustParse("1.0.0"), sourcecontrol.TagOptions{})
	require.NoError(t, err)

	_, err = tg.Tag(context.Background(), version.MustParse("1.0.0"), sourcecontrol.TagOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, sourcecontrol.ErrTagAlreadyExists)
	assert.True(t, rperrors.IsKind(err, rperrors.KindTag))
}

func TestTag_NoCommits(t *testing.T) {
	h := newTestRepo(t)

	_, err := h.tagger().Tag(context.Background(), version.MustParse("0.0.1"), sourcecontrol.TagOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sourcecontrol.ErrNoCommits))
	assert.True(t, rperrors.IsKind(err, rperrors.KindTag))
}

func TestRegister(t *testing.T) {
	h := newTestRepo(t)
	r := sourcecontrol.NewRegistry()
	Register(r)

	assert.Equal(t, []string{".git"}, r.Markers())

	d := r.Detect(afero.NewOsFs(), h.repoDir)
	require.True(t, d.Selected())
	assert.Equal(t, "git", d.Tagger.Name())

	d = r.Detect(afero.NewOsFs(), t.TempDir())
	assert.False(t, d.Selected())
}
