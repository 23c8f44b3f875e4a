package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// testRepoHelper provides helper methods for creating test repositories.
type testRepoHelper struct {
	t       *testing.T
	repoDir string
	repo    *git.Repository
}

// newTestRepo creates a repository in a temp dir.
func newTestRepo(t *testing.T) *testRepoHelper {
	t.Helper()

	repoDir := t.TempDir()
	repo, err := git.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("failed to init test repo: %v", err)
	}

	return &testRepoHelper{t: t, repoDir: repoDir, repo: repo}
}

// write creates or replaces a file relative to the repo root.
func (h *testRepoHelper) write(name, content string) string {
	h.t.Helper()

	path := filepath.Join(h.repoDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		h.t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// commitFiles stages the named files and commits them.
func (h *testRepoHelper) commitFiles(message string, names ...string) string {
	h.t.Helper()

	worktree, err := h.repo.Worktree()
	if err != nil {
		h.t.Fatalf("failed to get worktree: %v", err)
	}
	for _, name := range names {
		if _, err := worktree.Add(name); err != nil {
			h.t.Fatalf("failed to stage %s: %v", name, err)
		}
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test Author",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		h.t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}

// tagger opens the repo with a fixed identity.
func (h *testRepoHelper) tagger() *Tagger {
	h.t.Helper()

	tg, err := NewTagger(h.repoDir, WithSignature("Release Bot", "bot@example.com"))
	if err != nil {
		h.t.Fatalf("failed to open tagger: %v", err)
	}
	return tg
}
