package gitx

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// setupGitRepo creates a temporary git repository for testing.
func setupGitRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestRealGitRepo_Discover(t *testing.T) {
	repo := NewRealGitRepo()

	t.Run("finds git repo from root", func(t *testing.T) {
		gitDir := setupGitRepo(t)

		root, err := repo.Discover(gitDir)
		if err != nil {
			t.Fatalf("Discover failed: %v", err)
		}
		if root != gitDir {
			t.Errorf("Discover returned wrong root: got %s, want %s", root, gitDir)
		}
	})

	t.Run("finds git repo from subdirectory", func(t *testing.T) {
		gitDir := setupGitRepo(t)

		subDir := filepath.Join(gitDir, "a", "b", "c")
		if err := os.MkdirAll(subDir, 0755); err != nil {
			t.Fatalf("failed to create subdirectories: %v", err)
		}

		root, err := repo.Discover(subDir)
		if err != nil {
			t.Fatalf("Discover from subdirectory failed: %v", err)
		}
		if root != gitDir {
			t.Errorf("Discover returned wrong root: got %s, want %s", root, gitDir)
		}
	})

	t.Run("returns error when not in git repo", func(t *testing.T) {
		_, err := repo.Discover(t.TempDir())
		if err == nil {
			t.Skip("temp directory is inside a git repository")
		}
		if !errors.Is(err, ErrNotInRepo) {
			t.Errorf("Expected ErrNotInRepo, got: %v", err)
		}
	})
}

func TestRealGitRepo_RelPath(t *testing.T) {
	repo := NewRealGitRepo()
	root := t.TempDir()

	tests := []struct {
		name    string
		abs     string
		want    string
		wantErr bool
	}{
		{name: "nested file", abs: filepath.Join(root, "src", "main.go"), want: "src/main.go"},
		{name: "top level", abs: filepath.Join(root, "go.mod"), want: "go.mod"},
		{name: "dot-dot prefixed name", abs: filepath.Join(root, "..cache"), want: "..cache"},
		{name: "outside", abs: filepath.Dir(root), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.RelPath(root, tt.abs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RelPath error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("RelPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRealGitRepo_ChangedFiles(t *testing.T) {
	dir := setupGitRepo(t)
	repo := NewRealGitRepo()

	writeFile(t, filepath.Join(dir, "tracked.txt"), "one\n")
	writeFile(t, filepath.Join(dir, "doomed.txt"), "bye\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "init")

	writeFile(t, filepath.Join(dir, "tracked.txt"), "two\n")
	writeFile(t, filepath.Join(dir, "nested", "new file.txt"), "hi\n")
	if err := os.Remove(filepath.Join(dir, "doomed.txt")); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}

	files, err := repo.ChangedFiles(context.Background(), dir)
	if err != nil {
		t.Fatalf("ChangedFiles failed: %v", err)
	}

	got := map[string]FileStatus{}
	for _, f := range files {
		got[f.Path] = f.Status
	}
	want := map[string]FileStatus{
		"tracked.txt":         StatusModified,
		"doomed.txt":          StatusDeleted,
		"nested/new file.txt": StatusUntracked,
	}
	if len(got) != len(want) {
		t.Fatalf("ChangedFiles = %v, want %v", got, want)
	}
	for path, status := range want {
		if got[path] != status {
			t.Errorf("status of %s = %q, want %q", path, got[path], status)
		}
	}
}

func TestParseStatus(t *testing.T) {
	out := " M src/a.go\x00" +
		"A  added.txt\x00" +
		" D gone.txt\x00" +
		"?? dir/new file.txt\x00" +
		"R  renamed.txt\x00original.txt\x00" +
		"MM both.txt\x00" +
		"!! ignored.log\x00"

	files, err := ParseStatus([]byte(out))
	if err != nil {
		t.Fatalf("ParseStatus failed: %v", err)
	}

	want := []ChangedFile{
		{Path: "src/a.go", Status: StatusModified},
		{Path: "added.txt", Status: StatusAdded},
		{Path: "gone.txt", Status: StatusDeleted},
		{Path: "dir/new file.txt", Status: StatusUntracked},
		{Path: "renamed.txt", OrigPath: "original.txt", Status: StatusRenamed},
		{Path: "both.txt", Status: StatusModified},
	}
	if len(files) != len(want) {
		t.Fatalf("ParseStatus returned %d files, want %d: %+v", len(files), len(want), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("file %d = %+v, want %+v", i, files[i], want[i])
		}
	}
}

func TestParseStatus_Errors(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{name: "short record", out: "M\x00"},
		{name: "missing separator", out: "MMxfile\x00"},
		{name: "rename without original", out: "R  new.txt\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseStatus([]byte(tt.out)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseStatus_Empty(t *testing.T) {
	files, err := ParseStatus(nil)
	if err != nil {
		t.Fatalf("ParseStatus failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", files)
	}
}

func TestFakeGitRepo(t *testing.T) {
	fake := NewFakeGitRepo("/repo")
	fake.SetChanged(ChangedFile{Path: "a.txt", Status: StatusModified})

	root, err := fake.Discover("/repo/sub")
	if err != nil || root != "/repo" {
		t.Errorf("Discover = %q, %v", root, err)
	}

	files, err := fake.ChangedFiles(context.Background(), root)
	if err != nil || len(files) != 1 {
		t.Errorf("ChangedFiles = %v, %v", files, err)
	}

	boom := errors.New("boom")
	fake.SetError(boom)
	if _, err := fake.Discover("/repo"); !errors.Is(err, boom) {
		t.Errorf("Discover error = %v, want boom", err)
	}
	if _, err := fake.ChangedFiles(context.Background(), "/repo"); !errors.Is(err, boom) {
		t.Errorf("ChangedFiles error = %v, want boom", err)
	}
}
