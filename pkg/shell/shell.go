// Package shell is the entry point for the interpreter of Servo.
package shell

import (
	"fmt"
	"os"

	"src.servo.sh/pkg/config"
	"src.servo.sh/pkg/eval"
	"src.servo.sh/pkg/logutil"
	"src.servo.sh/pkg/prog"
	"src.servo.sh/pkg/proc"
	"src.servo.sh/pkg/sys"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the interpreter subprogram. It runs a script given as an
// argument, code given with -c, a script piped to stdin, or an interactive
// session when stdin is a terminal.
type Program struct{}

func (p Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if f.LSP {
		return prog.ErrNotSuitable
	}
	if len(args) > 1 {
		return prog.BadUsage("at most one script may be given")
	}
	if f.CodeInArg && len(args) == 0 {
		return prog.BadUsage("-c requires an argument")
	}

	cfg, err := config.LoadFound(f.Config)
	if err != nil {
		return err
	}
	if cfg.Log != "" && f.Log == "" {
		if err := logutil.SetOutputFile(cfg.Log); err != nil {
			fmt.Fprintln(fds[2], "Warning:", err)
		}
	}
	logger.Printf("config loaded from %q", cfg.Path)

	ev := newEvaler(cfg, fds)
	color := cfg.UseColor(sys.IsATTY(fds[2].Fd()))
	sc := &scriptCfg{Cmd: f.CodeInArg, CompileOnly: f.CompileOnly, JSON: f.JSON, Color: color}

	switch {
	case len(args) == 1:
		return prog.Exit(script(ev, fds, args[0], sc))
	case sys.IsATTY(fds[0].Fd()) && !f.CompileOnly:
		dbPath := f.DB
		if dbPath == "" {
			dbPath, err = cfg.HistoryPath()
			if err != nil {
				fmt.Fprintln(fds[2], "Warning: cannot locate history:", err)
			}
		}
		icfg := &interactCfg{Color: color}
		if st := openHistory(dbPath, fds[2]); st != nil {
			defer st.Close()
			icfg.Store = st
		}
		rd := newLinerReader()
		defer rd.Close()
		icfg.Reader = rd
		interact(ev, fds, icfg)
		return nil
	default:
		return prog.Exit(stdinScript(ev, fds, sc))
	}
}

// Creates an Evaler whose builtins and processes use fds.
func newEvaler(cfg *config.Config, fds [3]*os.File) *eval.Evaler {
	ev := eval.NewEvalerFromConfig(cfg)
	ev.Stdin, ev.Stdout = fds[0], fds[1]
	if sh, ok := ev.Runner.(*proc.Shell); ok {
		sh.Stdin, sh.Stdout, sh.Stderr = fds[0], fds[1], fds[2]
	}
	return ev
}
