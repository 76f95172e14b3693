package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

type cleanuper struct{ fns []func() }

func (c *cleanuper) Cleanup(fn func()) { c.fns = append(c.fns, fn) }

func (c *cleanuper) runCleanups() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
}

func TestTempDir_CleanupRemovesDir(t *testing.T) {
	c := &cleanuper{}
	dir := TempDir(c)
	if err := os.WriteFile(filepath.Join(dir, "a"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	c.runCleanups()
	if _, err := os.Stat(dir); err == nil {
		t.Errorf("dir %q still exists after cleanup", dir)
	}
}

func TestChdir_RestoresWd(t *testing.T) {
	dir := TempDir(t)
	before, _ := os.Getwd()

	c := &cleanuper{}
	Chdir(c, dir)
	now, _ := os.Getwd()
	if resolved, _ := filepath.EvalSymlinks(now); resolved != dir {
		t.Errorf("wd is %q, want %q", resolved, dir)
	}
	c.runCleanups()
	after, _ := os.Getwd()
	if after != before {
		t.Errorf("wd restored to %q, want %q", after, before)
	}
}

func TestApplyDir(t *testing.T) {
	InTempDir(t)
	ApplyDir(Dir{
		"a": "a content",
		"d": Dir{"b": "b content", "dd": Dir{}},
	})
	for name, want := range map[string]string{"a": "a content", "d/b": "b content"} {
		got, err := os.ReadFile(name)
		if err != nil || string(got) != want {
			t.Errorf("%s: got %q, %v; want %q", name, got, err, want)
		}
	}
	if stat, err := os.Stat("d/dd"); err != nil || !stat.IsDir() {
		t.Errorf("d/dd is not a directory")
	}
}

func TestSet(t *testing.T) {
	x := 1
	c := &cleanuper{}
	Set(c, &x, 2)
	if x != 2 {
		t.Errorf("x = %d after Set, want 2", x)
	}
	c.runCleanups()
	if x != 1 {
		t.Errorf("x = %d after cleanup, want 1", x)
	}
}

var dedentTests = []struct{ in, want string }{
	{"\n  a\n    b\n  c", "a\n  b\nc"},
	{"\ta\n\t\tb", "a\n\tb"},
	{"  a\n\n  b", "a\n\nb"},
	{"a\n  b", "a\n  b"},
}

func TestDedent(t *testing.T) {
	for _, test := range dedentTests {
		if got := Dedent(test.in); got != test.want {
			t.Errorf("Dedent(%q) -> %q, want %q", test.in, got, test.want)
		}
	}
}
