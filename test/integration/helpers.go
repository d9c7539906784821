// Package integration exercises shelf end to end against a real git
// repository and an on-disk store.
package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/shelf/internal/clock"
	"github.com/danieljhkim/shelf/internal/engine"
	"github.com/danieljhkim/shelf/internal/fsops"
	"github.com/danieljhkim/shelf/internal/gitx"
	"github.com/danieljhkim/shelf/internal/hash"
	"github.com/danieljhkim/shelf/internal/restore"
	"github.com/danieljhkim/shelf/internal/shelves"
)

type testRepo struct {
	root  string
	store *shelves.FileStore
	clock *clock.FakeClock
	eng   *engine.Engine
}

// setupTestRepo initializes a git repository in a temp dir and an engine
// wired to real implementations.
func setupTestRepo(t *testing.T) *testRepo {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	root := filepath.Join(base, "repo")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatalf("failed to create repo dir: %v", err)
	}
	runGit(t, root, "init", "-q")

	fs := fsops.NewRealFS()
	r := &testRepo{
		root:  root,
		store: shelves.NewFileStore(fs, filepath.Join(base, "shelves")),
		clock: clock.NewFakeClock(time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)),
	}
	r.eng = engine.New(gitx.NewRealGitRepo(), r.store, fs, hash.NewSHA256Hasher(), r.clock, zerolog.Nop())
	return r
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}

func (r *testRepo) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(r.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}

func (r *testRepo) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}
	return string(data)
}

func (r *testRepo) commitAll(t *testing.T) {
	t.Helper()
	runGit(t, r.root, "add", "-A")
	runGit(t, r.root, "commit", "-q", "-m", "snapshot")
}

func (r *testRepo) shelve(t *testing.T, req *engine.ShelveRequest) *engine.ShelveResult {
	t.Helper()
	if req.CWD == "" {
		req.CWD = r.root
	}
	result, err := r.eng.Shelve(context.Background(), req)
	if err != nil {
		t.Fatalf("Shelve() error = %v", err)
	}
	r.clock.Advance(time.Minute)
	return result
}

func (r *testRepo) restore(t *testing.T, req *engine.RestoreRequest) *engine.RestoreResult {
	t.Helper()
	if req.CWD == "" {
		req.CWD = r.root
	}
	result, err := r.eng.Restore(context.Background(), req)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	return result
}

// scriptedPolicy answers conflicts from a per-path table.
type scriptedPolicy struct {
	answers map[string]restore.Resolution
	asked   []string
}

func (p *scriptedPolicy) Resolve(ctx context.Context, req *restore.ConflictRequest) (restore.Resolution, error) {
	p.asked = append(p.asked, req.RelPath)
	answer, ok := p.answers[req.RelPath]
	if !ok {
		return "", restore.ErrResolutionCanceled
	}
	return answer, nil
}
