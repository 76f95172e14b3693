package shell

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"src.servo.sh/pkg/diag"
	"src.servo.sh/pkg/eval"
	"src.servo.sh/pkg/fsutil"
	"src.servo.sh/pkg/source"
)

// Configuration for the script mode.
type scriptCfg struct {
	Cmd         bool
	CompileOnly bool
	JSON        bool
	Color       bool
}

// Runs a script file, or code from -c, and returns the exit status.
func script(ev *eval.Evaler, fds [3]*os.File, arg string, cfg *scriptCfg) int {
	var src *source.File
	if cfg.Cmd {
		src = source.Virtual("code from -c", arg)
	} else {
		if !fsutil.IsRegular(arg) {
			fmt.Fprintf(fds[2],
				"tried to run servo file that is a directory or does not exist: %s\n", arg)
			return 1
		}
		src = source.Open(arg)
	}
	return run(ev, fds, src, cfg)
}

// Runs the code read from stdin.
func stdinScript(ev *eval.Evaler, fds [3]*os.File, cfg *scriptCfg) int {
	code, err := io.ReadAll(fds[0])
	if err != nil {
		fmt.Fprintln(fds[2], "cannot read stdin:", err)
		return 1
	}
	return run(ev, fds, source.Virtual("[stdin]", string(code)), cfg)
}

func run(ev *eval.Evaler, fds [3]*os.File, src *source.File, cfg *scriptCfg) int {
	ev.Check = cfg.CompileOnly
	err := diag.Guard(diag.BaseLabel, func() error {
		_, err := ev.Run(src)
		return err
	})
	if cfg.CompileOnly && cfg.JSON {
		fmt.Fprintf(fds[1], "%s\n", errorsToJSON(src.Name, err))
	} else if err != nil {
		diag.ShowFatal(fds[2], err, cfg.Color)
	}
	if err != nil {
		return 1
	}
	return 0
}

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
}

// Converts the error of a checked run into JSON. A run stops at its first
// error, so the list has at most one element.
func errorsToJSON(name string, err error) []byte {
	converted := []errorInJSON{}
	if err != nil {
		if e := eval.GetSyntaxError(err); e != nil {
			converted = append(converted,
				errorInJSON{e.Context.Name, e.Context.From, e.Context.To, e.Message})
		} else {
			converted = append(converted,
				errorInJSON{name, 0, 0, eval.Reason(err).Error()})
		}
	}

	jsonError, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}
