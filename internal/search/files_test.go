package search

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFindFilesFiltersAudio(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.WAV"))
	touch(t, filepath.Join(root, "a.mp3"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "day2", "c.m4a"))
	touch(t, filepath.Join(root, ".cache", "d.wav"))

	got, err := FindFiles(root, 0, AudioExtensions...)
	if err != nil {
		t.Fatalf("FindFiles: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.mp3"),
		filepath.Join(root, "b.WAV"),
		filepath.Join(root, "day2", "c.m4a"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindFiles = %v, want %v", got, want)
	}
}

func TestFindFilesLimit(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"1.wav", "2.wav", "3.wav"} {
		touch(t, filepath.Join(root, name))
	}
	got, err := FindFiles(root, 2)
	if err != nil {
		t.Fatalf("FindFiles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}
