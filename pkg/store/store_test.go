package store

import (
	"path/filepath"
	"testing"

	"src.servo.sh/pkg/store/storetest"
	"src.servo.sh/pkg/testutil"
)

func TestCmd(t *testing.T) {
	storetest.TestCmd(t, MustTempStore(t))
}

func TestNewStore_Reopen(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "history.db")
	st, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	st.AddCmd("x = 1")
	st.Close()

	st, err = NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if cmd, err := st.Cmd(1); cmd != "x = 1" || err != nil {
		t.Errorf("Cmd(1) after reopening -> (%q, %v)", cmd, err)
	}
	if seq, _ := st.NextCmdSeq(); seq != 2 {
		t.Errorf("NextCmdSeq() after reopening -> %d, want 2", seq)
	}
}

func TestNewStore_BadPath(t *testing.T) {
	dir := testutil.TempDir(t)
	if _, err := NewStore(filepath.Join(dir, "missing", "history.db")); err == nil {
		t.Errorf("NewStore in a missing directory -> nil error")
	}
}
