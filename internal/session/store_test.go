package session

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	id, err := s.Save("stdin", []string{"Hello", "world"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	rec, err := s.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.ID != id || rec.Source != "stdin" || !slices.Equal(rec.Segments, []string{"Hello", "world"}) {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Fingerprint != Fingerprint(rec.Segments) || len(rec.Fingerprint) != 64 {
		t.Fatalf("fingerprint = %q", rec.Fingerprint)
	}
	if rec.Text("\n") != "Hello\nworld" {
		t.Fatalf("Text = %q", rec.Text("\n"))
	}
}

func TestSaveSameContentReusesRecord(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	first, err := s.Save("a", []string{"same"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := s.Save("b", []string{"same"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first != second {
		t.Fatalf("ids differ: %q vs %q", first, second)
	}
	ids, _ := s.ListIDs()
	if len(ids) != 1 {
		t.Fatalf("ids = %q", ids)
	}
}

func TestFingerprintRespectsSegmentBoundaries(t *testing.T) {
	if Fingerprint([]string{"ab", "c"}) == Fingerprint([]string{"a", "bc"}) {
		t.Fatal("different segmentation must not collide")
	}
}

func TestListNewestFirstAndLast(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	old, _ := s.Save("x", []string{"old"})
	newer, _ := s.Save("x", []string{"new"})

	// 让旧记录的时间更早。
	rec, _ := s.Load(old)
	rec.Updated = time.Now().Add(-time.Hour)
	writeRecord(t, s.Dir, rec)

	if err := os.WriteFile(filepath.Join(s.Dir, "broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 || records[0].ID != newer || records[1].ID != old {
		t.Fatalf("records = %+v", records)
	}
	last, err := s.Last()
	if err != nil || last.ID != newer {
		t.Fatalf("Last = %+v, %v", last, err)
	}
}

func TestEmptyStore(t *testing.T) {
	s := &Store{Dir: filepath.Join(t.TempDir(), "missing")}
	ids, err := s.ListIDs()
	if err != nil || len(ids) != 0 {
		t.Fatalf("ListIDs = %q, %v", ids, err)
	}
	if _, err := s.Last(); err == nil {
		t.Fatal("expected error for empty store")
	}
	if _, err := (&Store{}).Save("x", nil); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestNewDefaultUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	s, err := NewDefault()
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}
	if want := filepath.Join(home, ".echo", "transcripts"); s.Dir != want {
		t.Fatalf("Dir = %q, want %q", s.Dir, want)
	}
}

func TestLoadRejectsNonUUIDIDs(t *testing.T) {
	dir := t.TempDir()
	s := &Store{Dir: filepath.Join(dir, "store")}
	outside := filepath.Join(dir, "secret.json")
	if err := os.WriteFile(outside, []byte(`{"id":"x","segments":["leak"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"../secret", "../../x", "last", ""} {
		if _, err := s.Load(id); err == nil {
			t.Fatalf("Load(%q) should fail", id)
		}
	}
}
