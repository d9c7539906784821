package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/shelf/internal/clock"
	"github.com/danieljhkim/shelf/internal/fsops"
	"github.com/danieljhkim/shelf/internal/gitx"
	"github.com/danieljhkim/shelf/internal/hash"
	"github.com/danieljhkim/shelf/internal/restore"
	"github.com/danieljhkim/shelf/internal/shelves"
)

type testEnv struct {
	root   string
	store  *shelves.FileStore
	git    *gitx.FakeGitRepo
	clock  *clock.FakeClock
	engine *Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "repo")
	require.NoError(t, os.MkdirAll(root, 0755))

	fs := fsops.NewRealFS()
	env := &testEnv{
		root:  root,
		store: shelves.NewFileStore(fs, filepath.Join(base, "shelves")),
		git:   gitx.NewFakeGitRepo(root),
		clock: clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	}
	env.engine = New(env.git, env.store, fs, hash.NewSHA256Hasher(), env.clock, zerolog.Nop())

	n := 0
	env.engine.newID = func() string {
		n++
		return fmt.Sprintf("entry-%04d-0000", n)
	}
	return env
}

func (env *testEnv) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(env.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (env *testEnv) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(env.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func (env *testEnv) shelve(t *testing.T, req *ShelveRequest) *ShelveResult {
	t.Helper()
	if req.CWD == "" {
		req.CWD = env.root
	}
	res, err := env.engine.Shelve(context.Background(), req)
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	return res
}

func TestShelve_ChangedFiles(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "src/app.go", "package app\n")
	env.write(t, "config.json", "{\"debug\": true}\n")
	env.git.SetChanged(
		gitx.ChangedFile{Path: "src/app.go", Status: gitx.StatusModified},
		gitx.ChangedFile{Path: "config.json", Status: gitx.StatusUntracked},
		gitx.ChangedFile{Path: "gone.txt", Status: gitx.StatusDeleted},
	)

	res := env.shelve(t, &ShelveRequest{Name: "wip"})

	assert.Equal(t, "entry-0001-0000", res.Entry.ID)
	assert.Equal(t, "wip", res.Entry.Label)
	assert.Equal(t, 2, res.Entry.FileCount)
	assert.Equal(t, []SkippedFile{{Path: "gone.txt", Reason: "deleted"}}, res.Skipped)

	entry, err := env.store.Load(res.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"config.json", "src/app.go"}, entry.Paths())
	assert.Equal(t, filepath.Join(env.root, "src", "app.go"), entry.Files["src/app.go"])
	assert.Equal(t, hash.NewSHA256Hasher().HashBytes([]byte("package app\n")), entry.Checksums["src/app.go"])
	assert.Equal(t, env.root, entry.WorkspaceRoot)

	data, exists, err := env.store.ReadSnapshot(env.store.ContentRoot(entry.ID), "config.json")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "{\"debug\": true}\n", string(data))
}

func TestShelve_Filters(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "a.json", "{}")
	env.write(t, "nested/b.json", "[]")
	env.write(t, "nested/secret.json", "{}")
	env.write(t, "c.go", "package c")
	env.git.SetChanged(
		gitx.ChangedFile{Path: "a.json", Status: gitx.StatusModified},
		gitx.ChangedFile{Path: "nested/b.json", Status: gitx.StatusModified},
		gitx.ChangedFile{Path: "nested/secret.json", Status: gitx.StatusModified},
		gitx.ChangedFile{Path: "c.go", Status: gitx.StatusModified},
	)

	cands, err := env.engine.Candidates(context.Background(), &ShelveRequest{
		CWD:     env.root,
		Include: []string{"*.json"},
		Exclude: []string{"**/secret*"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.json", "nested/b.json"}, cands.Paths())
	assert.Len(t, cands.Skipped, 2)
}

func TestShelve_ExplicitPaths(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "docs/a.md", "a")
	env.write(t, "docs/sub/b.md", "b")
	env.write(t, "docs/.git/config", "ignored")
	env.write(t, "top.txt", "top")

	res := env.shelve(t, &ShelveRequest{
		CWD:   filepath.Join(env.root, "docs"),
		Paths: []string{".", "../top.txt", "a.md"},
	})

	entry, err := env.store.Load(res.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.md", "docs/sub/b.md", "top.txt"}, entry.Paths())
}

func TestShelve_OutsideRepoUsesWorkingDirectory(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "loose.txt", "loose")
	env.git.SetError(gitx.ErrNotInRepo)

	res := env.shelve(t, &ShelveRequest{Paths: []string{"loose.txt"}})

	assert.Equal(t, env.root, res.Entry.WorkspaceRoot)
	assert.Equal(t, 1, res.Entry.FileCount)
}

func TestShelve_Errors(t *testing.T) {
	t.Run("nothing to shelve", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.engine.Shelve(context.Background(), &ShelveRequest{CWD: env.root})
		assert.ErrorIs(t, err, ErrNothingToShelve)
	})

	t.Run("not in repo without paths", func(t *testing.T) {
		env := newTestEnv(t)
		env.git.SetError(gitx.ErrNotInRepo)

		_, err := env.engine.Shelve(context.Background(), &ShelveRequest{CWD: env.root})
		assert.ErrorIs(t, err, ErrNotInRepo)
	})

	t.Run("missing explicit path", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.engine.Shelve(context.Background(), &ShelveRequest{CWD: env.root, Paths: []string{"nope.txt"}})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.engine.Shelve(context.Background(), &ShelveRequest{CWD: env.root, Include: []string{"[x"}})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("failed capture leaves no entry", func(t *testing.T) {
		env := newTestEnv(t)
		env.git.SetChanged(gitx.ChangedFile{Path: "ghost.txt", Status: gitx.StatusModified})
		env.write(t, "ghost.txt", "boo")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := env.engine.Shelve(ctx, &ShelveRequest{CWD: env.root})
		assert.ErrorIs(t, err, context.Canceled)

		entries, err := env.store.List()
		require.NoError(t, err)
		assert.Empty(t, entries)
		_, statErr := os.Stat(filepath.Dir(env.store.ContentRoot("entry-0001-0000")))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestListShowDrop(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "a.txt", "a\n")
	env.shelve(t, &ShelveRequest{Paths: []string{"a.txt"}, Name: "first"})
	env.shelve(t, &ShelveRequest{Paths: []string{"a.txt"}})

	infos, err := env.engine.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "entry-0002-0000", infos[0].ID)
	assert.Equal(t, "entry-00", infos[0].Label)
	assert.Equal(t, "first", infos[1].Label)

	show, err := env.engine.Show("first")
	require.NoError(t, err)
	require.Len(t, show.Files, 1)
	assert.Equal(t, "a.txt", show.Files[0].Path)
	assert.Equal(t, filepath.Join(env.store.ContentRoot("entry-0001-0000"), "a.txt"), show.Files[0].StoredPath)
	assert.NotEmpty(t, show.Files[0].Checksum)

	_, err = env.engine.Show("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.engine.Show("entry-")
	assert.ErrorIs(t, err, ErrValidation, "ambiguous prefix")

	dropped, err := env.engine.Drop("")
	require.NoError(t, err)
	assert.Equal(t, "entry-0002-0000", dropped.Entry.ID)

	infos, err = env.engine.List()
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestDiff(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "same.txt", "same\n")
	env.write(t, "changed.txt", "a\nb\n")
	env.write(t, "deleted.txt", "x\ny\n")
	env.write(t, "lost.txt", "lost\n")
	env.shelve(t, &ShelveRequest{Paths: []string{"same.txt", "changed.txt", "deleted.txt", "lost.txt"}})

	env.write(t, "changed.txt", "a\nc\nd\n")
	require.NoError(t, os.Remove(filepath.Join(env.root, "deleted.txt")))
	require.NoError(t, os.Remove(filepath.Join(env.store.ContentRoot("entry-0001-0000"), "lost.txt")))

	res, err := env.engine.Diff(context.Background(), &DiffRequest{ShowContent: true})
	require.NoError(t, err)

	byPath := map[string]DiffFileInfo{}
	for _, f := range res.Files {
		byPath[f.Path] = f
	}

	assert.Equal(t, DiffIdentical, byPath["same.txt"].Status)

	changed := byPath["changed.txt"]
	assert.Equal(t, DiffModified, changed.Status)
	assert.Equal(t, 1, changed.Added)
	assert.Equal(t, 2, changed.Removed)
	assert.NotEmpty(t, changed.Segments)

	deleted := byPath["deleted.txt"]
	assert.Equal(t, DiffMissing, deleted.Status)
	assert.Equal(t, 2, deleted.Added)

	assert.Equal(t, DiffSnapshotMissing, byPath["lost.txt"].Status)

	subset, err := env.engine.Diff(context.Background(), &DiffRequest{CWD: env.root, Paths: []string{"same.txt"}})
	require.NoError(t, err)
	require.Len(t, subset.Files, 1)
	assert.Nil(t, subset.Files[0].Segments)
}

func TestVerify(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "a.txt", "a\n")
	env.write(t, "b.txt", "b\n")
	env.shelve(t, &ShelveRequest{Paths: []string{"a.txt", "b.txt"}})

	res, err := env.engine.Verify("")
	require.NoError(t, err)
	assert.True(t, res.OK())

	tampered := filepath.Join(env.store.ContentRoot("entry-0001-0000"), "b.txt")
	require.NoError(t, os.WriteFile(tampered, []byte("evil\n"), 0644))

	res, err = env.engine.Verify("")
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.True(t, res.Files[0].OK)
	assert.False(t, res.Files[1].OK)
	assert.NotEqual(t, res.Files[1].Expected, res.Files[1].Actual)
}

func TestRestore(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "notes.txt", "a\nc\n")
	env.write(t, "same.txt", "same\n")
	env.write(t, "config.json", `{"x":2}`)
	env.shelve(t, &ShelveRequest{Paths: []string{"notes.txt", "same.txt", "config.json"}, Name: "X"})

	env.write(t, "notes.txt", "a\nb\n")
	env.write(t, "config.json", `{"x":1}`)

	res, err := env.engine.Restore(context.Background(), &RestoreRequest{
		Ref:    "X",
		Policy: restore.FixedPolicy{Resolution: restore.ResolutionMark},
		Drop:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, restore.Summary{Identical: 1, ConflictMarked: 2, Conflicts: 2}, res.Summary)
	assert.False(t, res.Dropped, "marked files keep the entry")
	assert.Equal(t, "a\n<<<<<<< Current Workspace\nb\n=======\nc\n>>>>>>> Shelf: X\n", env.read(t, "notes.txt"))
	assert.Contains(t, env.read(t, "config.json"), "  <<<<<<< Current Workspace\n  \"x\": 1\n")
}

func TestRestore_ForceAndDrop(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "f.txt", "new\n")
	env.write(t, "g.txt", "g\n")
	env.shelve(t, &ShelveRequest{Paths: []string{"f.txt", "g.txt"}})
	env.write(t, "f.txt", "old\n")
	require.NoError(t, os.Remove(filepath.Join(env.root, "g.txt")))

	res, err := env.engine.Restore(context.Background(), &RestoreRequest{Force: true, Drop: true})
	require.NoError(t, err)

	assert.Equal(t, restore.Summary{Restored: 2, Conflicts: 1}, res.Summary)
	assert.True(t, res.Dropped)
	assert.Equal(t, "new\n", env.read(t, "f.txt"))
	assert.Equal(t, "g\n", env.read(t, "g.txt"))

	infos, err := env.engine.List()
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestRestore_Subset(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "src/a.txt", "a\n")
	env.write(t, "src/b.txt", "b\n")
	env.write(t, "c.txt", "c\n")
	env.shelve(t, &ShelveRequest{Paths: []string{"src", "c.txt"}})
	env.write(t, "src/a.txt", "changed\n")
	env.write(t, "c.txt", "changed\n")

	res, err := env.engine.Restore(context.Background(), &RestoreRequest{
		CWD:   filepath.Join(env.root, "src"),
		Paths: []string{"a.txt"},
		Force: true,
		Drop:  true,
	})
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	assert.Equal(t, "src/a.txt", res.Files[0].Path)
	assert.False(t, res.Dropped, "partial restore keeps the entry")
	assert.Equal(t, "changed\n", env.read(t, "c.txt"))

	_, err = env.engine.Restore(context.Background(), &RestoreRequest{Paths: []string{"zzz"}, Force: true})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRestore_RequiresPolicy(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "f.txt", "f\n")
	env.shelve(t, &ShelveRequest{Paths: []string{"f.txt"}})

	_, err := env.engine.Restore(context.Background(), &RestoreRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRestore_NoEntries(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.Restore(context.Background(), &RestoreRequest{Force: true})
	assert.True(t, errors.Is(err, ErrNotFound))
}
