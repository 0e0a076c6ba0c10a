package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

func TestBuiltin_AnBn(t *testing.T) {
	d, err := Builtin("anbn")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	v, err := d.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, w := range []string{"a b", "a a b b"} {
		if !v.Accepts(vca.ParseWord(w)) {
			t.Errorf("expected %q accepted", w)
		}
	}
	for _, w := range []string{"", "a", "b", "a a b", "a b b"} {
		if v.Accepts(vca.ParseWord(w)) {
			t.Errorf("expected %q rejected", w)
		}
	}
}

func TestBuiltin_AllBuild(t *testing.T) {
	names := BuiltinNames()
	if len(names) < 3 {
		t.Fatalf("expected at least 3 builtins, got %v", names)
	}
	for _, name := range names {
		d, err := Resolve("builtin:" + name)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", name, err)
		}
		if _, err := d.Build(); err != nil {
			t.Errorf("Build(%s): %v", name, err)
		}
	}
	if _, err := Builtin("missing"); !errors.Is(err, ErrUnknownBuiltin) {
		t.Errorf("expected ErrUnknownBuiltin, got %v", err)
	}
}

func TestEvenDepth(t *testing.T) {
	d, err := Builtin("even-depth")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	v, err := d.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cases := map[string]bool{
		"":              true,
		"c a b c":       true,
		"a a c b b":     true,
		"a c b":         false,
		"a b a a c b b": true,
		"a":             false,
	}
	for w, want := range cases {
		if got := v.Accepts(vca.ParseWord(w)); got != want {
			t.Errorf("Accepts(%q) = %v, want %v", w, got, want)
		}
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("name: x\nalphabet: {calls: [a], returns: [b]}\nbogus: 1\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParse_JSON(t *testing.T) {
	data := []byte(`{"name":"j","alphabet":{"calls":["a"],"returns":["b"]},"threshold":0,
		"initial":"q","locations":[{"name":"q","accepting":true}],
		"transitions":[{"from":"q","counter":0,"symbol":"a","to":"q"},{"from":"q","counter":0,"symbol":"b","to":"q"}]}`)
	d, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, err := d.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !v.Accepts(vca.ParseWord("a a b b")) || v.Accepts(vca.ParseWord("b a")) {
		t.Error("unexpected language for well-nested words")
	}
}

func TestBuild_Errors(t *testing.T) {
	base := func() *Definition {
		return &Definition{
			Name:      "e",
			Alphabet:  AlphabetDef{Calls: []string{"a"}, Returns: []string{"b"}},
			Initial:   "q",
			Locations: []LocationDef{{Name: "q"}},
		}
	}
	d := base()
	d.Initial = "nope"
	if _, err := d.Build(); !errors.Is(err, vca.ErrInvalidParameter) {
		t.Errorf("bad initial: got %v", err)
	}
	d = base()
	d.Locations = append(d.Locations, LocationDef{Name: "q"})
	if _, err := d.Build(); !errors.Is(err, vca.ErrInvalidParameter) {
		t.Errorf("duplicate location: got %v", err)
	}
	d = base()
	d.Transitions = []TransitionDef{{From: "q", Symbol: "a", To: "r"}}
	if _, err := d.Build(); !errors.Is(err, vca.ErrInvalidParameter) {
		t.Errorf("unknown target: got %v", err)
	}
	d = base()
	d.Transitions = []TransitionDef{{From: "q", Symbol: "z", To: "q"}}
	if _, err := d.Build(); !errors.Is(err, vca.ErrInvalidParameter) {
		t.Errorf("unknown symbol: got %v", err)
	}
}

func TestFromVCA_RoundTrip(t *testing.T) {
	d, err := Builtin("anbn")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	v, err := d.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := FromVCA("copy", v).Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "copy.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	v2, err := loaded.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v2.NumLocations() != v.NumLocations() || len(v2.Transitions()) != len(v.Transitions()) {
		t.Errorf("round trip changed the automaton")
	}
	for _, w := range []string{"a b", "a a a b b b", "a b b", ""} {
		if v.Accepts(vca.ParseWord(w)) != v2.Accepts(vca.ParseWord(w)) {
			t.Errorf("round trip disagrees on %q", w)
		}
	}
}

func TestCacheScope_FollowsContent(t *testing.T) {
	d, err := Builtin("anbn")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	data, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	file := filepath.Join(t.TempDir(), "target.yaml")
	scopeOf := func(content []byte) string {
		t.Helper()
		if err := os.WriteFile(file, content, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		loaded, err := Load(file)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		scope, err := loaded.CacheScope(file)
		if err != nil {
			t.Fatalf("CacheScope: %v", err)
		}
		return scope
	}

	first := scopeOf(data)
	if again := scopeOf(append([]byte("# same automaton\n"), data...)); again != first {
		t.Errorf("comment changed the scope: %s vs %s", again, first)
	}
	d.Locations[0].Accepting = !d.Locations[0].Accepting
	edited, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if scopeOf(edited) == first {
		t.Error("editing the definition kept the cache scope")
	}
}
