package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

func TestFindPDFs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.pdf"))
	touch(t, filepath.Join(dir, "a.PDF"))
	touch(t, filepath.Join(dir, "notes.txt"))
	if err := os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	pdfs, err := FindPDFs(dir)
	if err != nil {
		t.Fatalf("FindPDFs() error = %v", err)
	}

	if len(pdfs) != 2 {
		t.Fatalf("expected 2 PDFs, got %v", pdfs)
	}
	// Sorted by full name, extension case preserved.
	if filepath.Base(pdfs[0]) != "a.PDF" || filepath.Base(pdfs[1]) != "b.pdf" {
		t.Errorf("unexpected order: %v", pdfs)
	}
}

func TestMoveToProcessed(t *testing.T) {
	inbox := t.TempDir()
	processed := filepath.Join(t.TempDir(), "processed")

	src := filepath.Join(inbox, "exam.pdf")
	touch(t, src)

	if err := MoveToProcessed(src, processed); err != nil {
		t.Fatalf("MoveToProcessed() error = %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source file should be gone")
	}
	if _, err := os.Stat(filepath.Join(processed, "exam.pdf")); err != nil {
		t.Errorf("file not in processed dir: %v", err)
	}
}

func TestMoveToProcessed_NameCollision(t *testing.T) {
	inbox := t.TempDir()
	processed := t.TempDir()

	touch(t, filepath.Join(processed, "exam.pdf"))
	src := filepath.Join(inbox, "exam.pdf")
	touch(t, src)

	if err := MoveToProcessed(src, processed); err != nil {
		t.Fatalf("MoveToProcessed() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(processed, "exam_1.pdf")); err != nil {
		t.Errorf("colliding file should be renamed: %v", err)
	}
}

func TestRestore(t *testing.T) {
	failed := t.TempDir()
	inbox := t.TempDir()

	touch(t, filepath.Join(failed, "one.pdf"))
	touch(t, filepath.Join(failed, "two.pdf"))
	touch(t, filepath.Join(failed, "readme.md"))

	n, err := Restore(failed, inbox, nil)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 restored, got %d", n)
	}

	pdfs, err := FindPDFs(inbox)
	if err != nil {
		t.Fatal(err)
	}
	if len(pdfs) != 2 {
		t.Errorf("inbox should contain 2 PDFs, got %v", pdfs)
	}
}

func TestRestore_MissingSourceDir(t *testing.T) {
	n, err := Restore(filepath.Join(t.TempDir(), "nope"), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("missing source dir should not error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 restored, got %d", n)
	}
}

func TestPreflight_RejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	touch(t, path)

	if _, err := Preflight(path); err == nil {
		t.Error("a text file should fail preflight")
	}
}
