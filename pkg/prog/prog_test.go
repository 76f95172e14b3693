package prog_test

import (
	"io"
	"os"
	"testing"

	"src.servo.sh/pkg/logutil"
	. "src.servo.sh/pkg/prog"
	"src.servo.sh/pkg/prog/progtest"
	"src.servo.sh/pkg/testutil"
)

var (
	Test      = progtest.Test
	ThatServo = progtest.ThatServo
)

func TestCommonFlagHandling(t *testing.T) {
	testutil.InTempDir(t)
	t.Cleanup(func() { logutil.SetOutput(io.Discard) })

	Test(t, testProgram{},
		ThatServo("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatServo("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		ThatServo("-help").
			WritesStdoutContaining("Usage: servo [flags] [script]"),

		ThatServo("-cpuprofile", "cpuprof").DoesNothing(),
		ThatServo("-cpuprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create CPU profile:"),

		ThatServo("-log", "log").DoesNothing(),
		ThatServo("-log", "/a/bad/path").WritesStderrContaining("/a/bad/path"),
	)

	// Check for the effect of -cpuprofile. There isn't much to test beyond a
	// sanity check that the profile file now exists.
	_, err := os.Stat("cpuprof")
	if err != nil {
		t.Errorf("CPU profile file does not exist: %v", err)
	}
}

func TestFlags(t *testing.T) {
	var got *Flags
	p := programFunc(func(_ [3]*os.File, f *Flags, args []string) error {
		got = f
		return nil
	})
	progtest.Run(p, "-c", "-compileonly", "-json", "-config", "c.yaml", "-db", "h.db", "-lsp", "code")
	if got == nil {
		t.Fatal("program not run")
	}
	want := Flags{CodeInArg: true, CompileOnly: true, JSON: true, Config: "c.yaml", DB: "h.db", LSP: true}
	if *got != want {
		t.Errorf("got flags %+v, want %+v", *got, want)
	}
}

func TestNoSuitableSubprogram(t *testing.T) {
	Test(t, testProgram{notSuitable: true},
		ThatServo().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{writeOut: "program 2"}),
		ThatServo().WritesStdout("program 2"),
	)
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{notSuitable: true}),
		ThatServo().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite_PreferEarlierSubprogram(t *testing.T) {
	Test(t,
		Composite(
			testProgram{writeOut: "program 1"}, testProgram{writeOut: "program 2"}),
		ThatServo().WritesStdout("program 1"),
	)
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatServo().ExitsWith(2).WritesStderrContaining("lorem ipsum\nUsage:"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(3)},
		ThatServo().ExitsWith(3),
	)
}

func TestExitError_0(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(0)},
		ThatServo().ExitsWith(0),
	)
}

type testProgram struct {
	notSuitable bool
	writeOut    string
	returnErr   error
}

func (p testProgram) Run(fds [3]*os.File, _ *Flags, args []string) error {
	if p.notSuitable {
		return ErrNotSuitable
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}

type programFunc func(fds [3]*os.File, f *Flags, args []string) error

func (p programFunc) Run(fds [3]*os.File, f *Flags, args []string) error {
	return p(fds, f, args)
}
