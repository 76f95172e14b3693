package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"src.servo.sh/pkg/env"
	"src.servo.sh/pkg/must"
	"src.servo.sh/pkg/testutil"
	"src.servo.sh/pkg/tt"
)

func TestGetHome_UsesHOME(t *testing.T) {
	testutil.Setenv(t, env.HOME, "/home/servo/")
	home, err := GetHome("")
	if home != "/home/servo" || err != nil {
		t.Errorf("GetHome(\"\") -> (%q, %v), want (\"/home/servo\", nil)", home, err)
	}
}

func TestGetwd(t *testing.T) {
	dir := testutil.InTempDir(t)
	// On some systems /tmp is a symlink.
	dir = must.OK1(filepath.EvalSymlinks(dir))

	testutil.Setenv(t, env.HOME, "/does/not/exist")
	if got := Getwd(); got != dir {
		t.Errorf("Getwd() -> %v, want %v", got, dir)
	}

	testutil.Setenv(t, env.HOME, dir)
	if got := Getwd(); got != "~" {
		t.Errorf("Getwd() -> %v, want ~", got)
	}

	must.OK(os.Mkdir("a", 0700))
	testutil.Chdir(t, "a")
	if got := Getwd(); got != filepath.Join("~", "a") {
		t.Errorf("Getwd() -> %v, want ~/a", got)
	}
}

func TestTildeAbbr(t *testing.T) {
	testutil.Setenv(t, env.HOME, "/home/servo")
	tt.Test(t, tt.Fn("TildeAbbr", TildeAbbr), tt.Table{
		tt.Args("/home/servo").Rets("~"),
		tt.Args("/home/servo/x").Rets("~/x"),
		tt.Args("/home/servox").Rets("/home/servox"),
		tt.Args("/tmp").Rets("/tmp"),
	})
}

func TestIsRegular(t *testing.T) {
	testutil.InTempDir(t)
	testutil.ApplyDir(testutil.Dir{"f.sv": "x", "d": testutil.Dir{}})
	tt.Test(t, tt.Fn("IsRegular", IsRegular), tt.Table{
		tt.Args("f.sv").Rets(true),
		tt.Args("d").Rets(false),
		tt.Args("missing").Rets(false),
	})
}
