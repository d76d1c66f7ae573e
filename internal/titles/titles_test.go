package titles

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTitlesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "titles.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestFileSource_TrimsAndDedupes(t *testing.T) {
	path := writeTitlesFile(t, `[" Cambodia visa guide ", "cambodia VISA guide", "", "Siem Reap temples"]`)
	src := &FileSource{Path: path}
	got, err := src.ExistingTitles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 titles after dedupe, got %d: %v", len(got), got)
	}
	if got[0] != "Cambodia visa guide" {
		t.Fatalf("first occurrence kept trimmed, got %q", got[0])
	}
	if got[1] != "Siem Reap temples" {
		t.Fatalf("got %q", got[1])
	}
}

func TestFileSource_EmptyPath(t *testing.T) {
	src := &FileSource{}
	if _, err := src.ExistingTitles(context.Background()); err == nil {
		t.Fatalf("empty path must error")
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	src := &FileSource{Path: filepath.Join(t.TempDir(), "absent.json")}
	if _, err := src.ExistingTitles(context.Background()); err == nil {
		t.Fatalf("missing file must error")
	}
}

func TestFileSource_MalformedJSON(t *testing.T) {
	path := writeTitlesFile(t, `{"not": "an array"}`)
	src := &FileSource{Path: path}
	if _, err := src.ExistingTitles(context.Background()); err == nil {
		t.Fatalf("non-array payload must error")
	}
}

func TestStatic(t *testing.T) {
	got, err := Static{"a", "b"}.ExistingTitles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "a" {
		t.Fatalf("static source must return its list verbatim, got %v", got)
	}
}
