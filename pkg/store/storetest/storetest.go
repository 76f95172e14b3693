// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.servo.sh/pkg/store/storedefs"
)

var (
	cmds     = []string{"x = 1", `system("ls")`, `system("pwd")`, "x = 2"}
	searches = []struct {
		next      bool
		seq       int
		prefix    string
		wantedSeq int
		wantedCmd string
		wantedErr error
	}{
		{false, 5, "x", 4, "x = 2", nil},
		{false, 5, "system", 3, `system("pwd")`, nil},
		{false, 4, "x", 1, "x = 1", nil},
		{false, 3, "fn", 0, "", storedefs.ErrNoMatchingCmd},

		{true, 1, "x", 1, "x = 1", nil},
		{true, 1, "system", 2, `system("ls")`, nil},
		{true, 2, "x", 4, "x = 2", nil},
		{true, 4, "system", 0, "", storedefs.ErrNoMatchingCmd},
	}
)

// TestCmd tests the command history functionality of a Store. The store must
// be empty.
func TestCmd(t *testing.T, store storedefs.Store) {
	t.Helper()

	startSeq, err := store.NextCmdSeq()
	if startSeq != 1 || err != nil {
		t.Errorf("store.NextCmdSeq() -> (%v, %v), want (1, nil)", startSeq, err)
	}
	for i, cmd := range cmds {
		wantSeq := startSeq + i
		seq, err := store.AddCmd(cmd)
		if seq != wantSeq || err != nil {
			t.Errorf("store.AddCmd(%v) -> (%v, %v), want (%v, nil)", cmd, seq, err, wantSeq)
		}
	}
	endSeq, err := store.NextCmdSeq()
	wantedEndSeq := startSeq + len(cmds)
	if endSeq != wantedEndSeq || err != nil {
		t.Errorf("store.NextCmdSeq() -> (%v, %v), want (%v, nil)", endSeq, err, wantedEndSeq)
	}

	for i, wantedCmd := range cmds {
		seq := i + startSeq
		cmd, err := store.Cmd(seq)
		if cmd != wantedCmd || err != nil {
			t.Errorf("store.Cmd(%v) -> (%v, %v), want (%v, nil)", seq, cmd, err, wantedCmd)
		}
	}

	got, err := store.CmdsWithSeq(2, 4)
	want := []storedefs.Cmd{{Text: cmds[1], Seq: 2}, {Text: cmds[2], Seq: 3}}
	if diff := cmp.Diff(want, got); diff != "" || err != nil {
		t.Errorf("store.CmdsWithSeq(2, 4) -> error %v, diff (-want +got):\n%s", err, diff)
	}

	for _, tt := range searches {
		f, fname := store.PrevCmd, "store.PrevCmd"
		if tt.next {
			f, fname = store.NextCmd, "store.NextCmd"
		}
		cmd, err := f(tt.seq, tt.prefix)
		wantedCmd := storedefs.Cmd{Text: tt.wantedCmd, Seq: tt.wantedSeq}
		if cmd != wantedCmd || !matchErr(err, tt.wantedErr) {
			t.Errorf("%s(%v, %v) -> (%v, %v), want (%v, %v)",
				fname, tt.seq, tt.prefix, cmd, err, wantedCmd, tt.wantedErr)
		}
	}

	if err := store.DelCmd(1); err != nil {
		t.Errorf("store.DelCmd(1) -> %v, want nil", err)
	}
	if cmd, err := store.Cmd(1); !matchErr(err, storedefs.ErrNoMatchingCmd) {
		t.Errorf("store.Cmd(1) after deletion -> (%v, %v), want (\"\", ErrNoMatchingCmd)", cmd, err)
	}
	// Sequence numbers are not reused.
	if seq, err := store.AddCmd("again"); seq != wantedEndSeq || err != nil {
		t.Errorf("store.AddCmd after deletion -> (%v, %v), want (%v, nil)", seq, err, wantedEndSeq)
	}
}

func matchErr(e1, e2 error) bool {
	return (e1 == nil && e2 == nil) || (e1 != nil && e2 != nil && e1.Error() == e2.Error())
}
