package eval

import (
	"fmt"
	"path/filepath"

	"src.servo.sh/pkg/fsutil"
	"src.servo.sh/pkg/source"
)

// Extension of module files.
const moduleExt = ".sv"

// Directories searched by imports before the configured ones, relative to the
// working directory.
var builtinReachDirs = []string{".", "reach", filepath.Join("..", "reach"), filepath.Join("servo", "reach")}

// ModuleNotFoundError is returned when an imported module cannot be found.
type ModuleNotFoundError struct {
	Name     string
	Searched []string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module %q not found locally or in reach", e.Name)
}

// Kind names the error in fatal reports.
func (e *ModuleNotFoundError) Kind() string { return "MODULE" }

func (ev *Evaler) reachDirs() []string {
	return append(append([]string(nil), builtinReachDirs...), ev.ReachDirs...)
}

// Returns the path of the first regular file for the module.
func (ev *Evaler) findModule(name string) (string, error) {
	var searched []string
	for _, dir := range ev.reachDirs() {
		path := filepath.Join(dir, name+moduleExt)
		if fsutil.IsRegular(path) {
			return path, nil
		}
		searched = append(searched, path)
	}
	return "", &ModuleNotFoundError{name, searched}
}

// Runs a module in its own frame and binds what it defines under name.
func (fm *Frame) importModule(name string) error {
	path, err := fm.findModule(name)
	if err != nil {
		return err
	}
	logger.Printf("importing %s from %s", name, path)
	if _, err := fm.pushLayer(name, LayerModule); err != nil {
		return err
	}
	defer fm.popLayer()
	ns, err := fm.Run(source.Open(path))
	if err != nil {
		return err
	}
	fm.Ns.Bind(name, Module{ns.exported()}, KindModule)
	return nil
}
