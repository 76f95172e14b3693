// Package source provides access to source units: script files on disk and
// virtual units such as function bodies and command-line code.
package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel is appended to the content of every unit read from disk, so that
// the last construct of a file is always followed by a terminator.
const Sentinel = " "

// Type is the type of the filesystem object a File refers to.
type Type string

// Possible values of Type.
const (
	Missing Type = ""
	Dir     Type = "dir"
	Regular Type = "file"
)

// ErrNoPath is returned when a disk operation is attempted on a virtual unit.
var ErrNoPath = errors.New("source unit has no path")

// File is a source unit. The zero value is not usable; create Files with Open
// or Virtual.
type File struct {
	// Name identifies the unit in diagnostics.
	Name string
	// Path is the absolute path of the unit, or "" for virtual units.
	Path string

	content string
	loaded  bool
}

// Open returns a File for the given path without reading it.
func Open(path string) *File {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &File{Name: path, Path: abs}
}

// Virtual returns a File whose content is code. It is never read from or
// written to disk.
func Virtual(name, code string) *File {
	return &File{Name: name, content: code, loaded: true}
}

// IsVirtual reports whether f is a virtual unit.
func (f *File) IsVirtual() bool { return f.Path == "" }

// Read returns the content of the unit. The content of a file on disk is read
// once, and the Sentinel is appended to it.
func (f *File) Read() (string, error) {
	if f.loaded {
		return f.content, nil
	}
	if f.Path == "" {
		return "", ErrNoPath
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	f.content = string(data) + Sentinel
	f.loaded = true
	return f.content, nil
}

// Write writes content to the file, replacing or appending to the existing
// content.
func (f *File) Write(content string, appending bool) error {
	if f.Path == "" {
		return ErrNoPath
	}
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appending {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	file, err := os.OpenFile(f.Path, flag, 0o644)
	if err != nil {
		return err
	}
	_, err = file.WriteString(content)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	f.content, f.loaded = content, true
	return nil
}

// Type returns the type of the filesystem object at the path.
func (f *File) Type() Type {
	if f.Path == "" {
		return Missing
	}
	info, err := os.Stat(f.Path)
	switch {
	case err != nil:
		return Missing
	case info.IsDir():
		return Dir
	case info.Mode().IsRegular():
		return Regular
	}
	return Missing
}

// Exists reports whether the path refers to a directory or a regular file.
func (f *File) Exists() bool { return f.Type() != Missing }

// Delete removes the file, or the directory and everything under it. It
// returns false if there was nothing to delete.
func (f *File) Delete() (bool, error) {
	switch f.Type() {
	case Regular:
		return true, os.Remove(f.Path)
	case Dir:
		return true, os.RemoveAll(f.Path)
	}
	return false, nil
}

// Mkdir creates the directory and any missing parents. It returns false if
// the path already exists.
func (f *File) Mkdir() (bool, error) {
	if f.Path == "" {
		return false, ErrNoPath
	}
	if f.Exists() {
		return false, nil
	}
	return true, os.MkdirAll(f.Path, 0o755)
}

// Ext returns the extension of the path without the leading dot.
func (f *File) Ext() string {
	return strings.TrimPrefix(filepath.Ext(f.Path), ".")
}

// Base returns the last element of the path.
func (f *File) Base() string {
	if f.Path == "" {
		return f.Name
	}
	return filepath.Base(f.Path)
}

// Parent returns the directory containing the file.
func (f *File) Parent() string {
	return filepath.Dir(f.Path)
}

// Parts returns the elements of the path, starting with the root.
func (f *File) Parts() []string {
	if f.Path == "" {
		return nil
	}
	var parts []string
	if vol := filepath.VolumeName(f.Path); vol != "" {
		parts = append(parts, vol)
	}
	rest := f.Path[len(filepath.VolumeName(f.Path)):]
	if strings.HasPrefix(rest, string(filepath.Separator)) {
		parts = append(parts, string(filepath.Separator))
	}
	for _, part := range strings.Split(rest, string(filepath.Separator)) {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// Child returns the path of a descendant of the file.
func (f *File) Child(tree ...string) string {
	return filepath.Join(append([]string{f.Path}, tree...)...)
}
