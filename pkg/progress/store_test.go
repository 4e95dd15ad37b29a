package progress

import (
	"context"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "progress.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLast(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	doc := filepath.Join(t.TempDir(), "tour.md")

	if _, ok, err := s.Last(ctx, doc); err != nil || ok {
		t.Fatalf("expected nothing saved, got ok=%v err=%v", ok, err)
	}

	if err := s.Save(ctx, doc, 2, 5); err != nil {
		t.Fatalf("Save: %v", err)
	}
	e, ok, err := s.Last(ctx, doc)
	if err != nil || !ok {
		t.Fatalf("Last: ok=%v err=%v", ok, err)
	}
	if e.Step != 2 || e.Steps != 5 || e.Path != doc {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.UpdatedAt.IsZero() {
		t.Error("expected a timestamp")
	}

	// Saving again overwrites.
	if err := s.Save(ctx, doc, 4, 5); err != nil {
		t.Fatal(err)
	}
	if e, _, _ := s.Last(ctx, doc); e.Step != 4 {
		t.Errorf("expected step 4, got %d", e.Step)
	}
}

func TestRelativePathsShareEntry(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	t.Chdir(t.TempDir())

	if err := s.Save(ctx, "tour.md", 1, 3); err != nil {
		t.Fatal(err)
	}
	abs, _ := filepath.Abs("tour.md")
	if _, ok, _ := s.Last(ctx, abs); !ok {
		t.Error("relative and absolute paths should resolve to the same entry")
	}
}

func TestSaveRejectsOutOfRange(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := s.Save(ctx, "a.md", 3, 3); err == nil {
		t.Error("expected error for step == steps")
	}
	if err := s.Save(ctx, "a.md", -1, 3); err == nil {
		t.Error("expected error for negative step")
	}
}

func TestForget(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := s.Save(ctx, "a.md", 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Forget(ctx, "a.md"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Last(ctx, "a.md"); ok {
		t.Error("expected entry to be gone")
	}
}

func TestReopenKeepsProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "a.md", 1, 2); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if e, ok, _ := s.Last(ctx, "a.md"); !ok || e.Step != 1 {
		t.Errorf("expected saved step to survive reopen, got %+v ok=%v", e, ok)
	}
}

func TestResumeIndex(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		ok    bool
		steps int
		want  int
	}{
		{"nothing saved", Entry{}, false, 4, 0},
		{"saved in range", Entry{Step: 2}, true, 4, 2},
		{"walkthrough shrank", Entry{Step: 5}, true, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResumeIndex(tt.entry, tt.ok, tt.steps); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	if got, want := DefaultPath(), filepath.Join(dir, "codewalk", "progress.db"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
