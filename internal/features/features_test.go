package features

import "testing"

func TestResolve(t *testing.T) {
	s := Resolve(map[string]bool{Clipboard: false, AutoSave: true, "nope": true})
	if s.Enabled(Clipboard) {
		t.Fatal("clipboard should be disabled by override")
	}
	if !s.Enabled(AutoSave) {
		t.Fatal("auto_save should be enabled by override")
	}
	if !s.Enabled(Search) {
		t.Fatal("search should keep its default")
	}
	if _, ok := s["nope"]; ok {
		t.Fatal("unknown keys must be dropped")
	}
}

func TestNilSetUsesDefaults(t *testing.T) {
	var s Set
	for _, spec := range Specs {
		if got := s.Enabled(spec.Key); got != spec.DefaultEnabled {
			t.Fatalf("Enabled(%q) = %v, want %v", spec.Key, got, spec.DefaultEnabled)
		}
	}
	if StageFor("missing") != StageExperimental {
		t.Fatal("unknown key should report experimental stage")
	}
}
