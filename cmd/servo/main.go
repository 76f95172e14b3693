// Servo is a small scripting language whose interpreter runs code as it
// reads it, one character at a time, without building a syntax tree. Besides
// running scripts, it offers an interactive mode and a language server.
package main

import (
	"os"

	"src.servo.sh/pkg/buildinfo"
	"src.servo.sh/pkg/lsp"
	"src.servo.sh/pkg/prog"
	"src.servo.sh/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(buildinfo.Program{}, lsp.Program{}, shell.Program{})))
}
