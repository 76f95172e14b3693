package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"src.servo.sh/pkg/diag"
	"src.servo.sh/pkg/eval"
	"src.servo.sh/pkg/fsutil"
	"src.servo.sh/pkg/source"
	"src.servo.sh/pkg/store"
	"src.servo.sh/pkg/store/storedefs"
)

// Returned by a lineReader when the user aborts the current input.
var errAborted = errors.New("aborted")

// The line editor used by the interactive mode.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	AddHistory(line string)
}

type linerReader struct{ *liner.State }

func newLinerReader() *linerReader {
	s := liner.NewLiner()
	s.SetCtrlCAborts(true)
	return &linerReader{s}
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	line, err := r.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", errAborted
	}
	return line, err
}

func (r *linerReader) AddHistory(line string) { r.AppendHistory(line) }

// Configuration for the interactive mode.
type interactCfg struct {
	Reader lineReader
	// Where lines are persisted; may be nil.
	Store storedefs.Store
	Color bool
}

const continuationPrompt = "... "

func prompt() string {
	return fsutil.TildeAbbr(fsutil.Getwd()) + "> "
}

// Runs an interactive session. All lines are fed to one frame, so a
// construct may span several lines and definitions persist. An error
// discards whatever construct was open.
func interact(ev *eval.Evaler, fds [3]*os.File, cfg *interactCfg) {
	rd := cfg.Reader
	if cfg.Store != nil {
		loadHistory(cfg.Store, rd, fds[2])
	}

	fm := ev.NewFrame(source.Virtual("[repl]", ""))
	for {
		p := prompt()
		if fm.Pending() {
			p = continuationPrompt
		}
		line, err := rd.ReadLine(p)
		if err == errAborted {
			fm.Reset()
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			fmt.Fprintln(fds[2], "Editor error:", err)
			break
		}

		if strings.TrimSpace(line) != "" {
			rd.AddHistory(line)
			if cfg.Store != nil {
				if _, err := cfg.Store.AddCmd(line); err != nil {
					logger.Println("cannot add to history:", err)
				}
			}
		}

		var out eval.Outcome
		err = diag.Guard("servo.eval", func() error {
			var err error
			out, err = fm.Feed(line + "\n")
			return err
		})
		if err != nil {
			diag.ShowFatal(fds[2], err, cfg.Color)
			fm.Reset()
			continue
		}
		if out.Returned {
			if _, unset := out.Value.(eval.Unset); !unset {
				fmt.Fprintln(fds[1], eval.Repr(out.Value))
			}
		}
	}

	err := diag.Guard("servo.eval", func() error {
		_, err := fm.Finish()
		return err
	})
	if err != nil {
		diag.ShowFatal(fds[2], err, cfg.Color)
	}
}

// Opens the history database at path. Failures are only warned about, since
// the interactive mode works without history.
func openHistory(path string, stderr io.Writer) store.DBStore {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintln(stderr, "Warning: cannot open history:", err)
		return nil
	}
	st, err := store.NewStore(path)
	if err != nil {
		fmt.Fprintln(stderr, "Warning: cannot open history:", err)
		return nil
	}
	return st
}

func loadHistory(st storedefs.Store, rd lineReader, stderr io.Writer) {
	upto, err := st.NextCmdSeq()
	if err != nil {
		fmt.Fprintln(stderr, "Warning: cannot read history:", err)
		return
	}
	cmds, err := st.CmdsWithSeq(0, upto)
	if err != nil {
		fmt.Fprintln(stderr, "Warning: cannot read history:", err)
		return
	}
	for _, cmd := range cmds {
		rd.AddHistory(cmd.Text)
	}
}
