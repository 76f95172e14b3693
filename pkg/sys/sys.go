// Package sys provide system utilities with the same API across OSes.
package sys

import (
	"syscall"

	"github.com/mattn/go-isatty"
)

// IsATTY determines whether the given file is a terminal.
func IsATTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SignalName returns the conventional name of a signal, like "SIGKILL".
func SignalName(sig syscall.Signal) string { return signalName(sig) }
