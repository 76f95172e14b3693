package lsp

import (
	"os"
	"testing"

	"src.servo.sh/pkg/must"
	"src.servo.sh/pkg/prog"
)

func TestProgram_NotSuitable(t *testing.T) {
	err := Program{}.Run([3]*os.File{}, &prog.Flags{}, nil)
	if err != prog.ErrNotSuitable {
		t.Errorf("got error %v, want ErrNotSuitable", err)
	}
}

func TestProgram_ExitsWhenInputCloses(t *testing.T) {
	r0, w0 := must.Pipe()
	r1, w1 := must.Pipe()
	defer r1.Close()
	w0.Close()

	err := Program{}.Run([3]*os.File{r0, w1, nil}, &prog.Flags{LSP: true}, nil)
	if err != nil {
		t.Errorf("got error %v", err)
	}
}
