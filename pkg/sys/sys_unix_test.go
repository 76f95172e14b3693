//go:build unix

package sys

import (
	"syscall"
	"testing"

	"github.com/creack/pty"
	"src.servo.sh/pkg/must"
)

func TestIsATTY(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skip("cannot open pty:", err)
	}
	defer ptmx.Close()
	defer tty.Close()
	if !IsATTY(tty.Fd()) {
		t.Errorf("IsATTY(pty) -> false, want true")
	}

	r, w := must.Pipe()
	defer r.Close()
	defer w.Close()
	if IsATTY(r.Fd()) {
		t.Errorf("IsATTY(pipe) -> true, want false")
	}
}

func TestSignalName(t *testing.T) {
	if name := SignalName(syscall.SIGKILL); name != "SIGKILL" {
		t.Errorf("SignalName(SIGKILL) -> %q, want SIGKILL", name)
	}
	if name := SignalName(syscall.SIGTERM); name != "SIGTERM" {
		t.Errorf("SignalName(SIGTERM) -> %q, want SIGTERM", name)
	}
}
