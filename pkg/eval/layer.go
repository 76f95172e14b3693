package eval

import (
	"fmt"

	"src.servo.sh/pkg/diag"
)

// Kinds of layers.
const (
	LayerFunc   = "func"
	LayerModule = "module"
)

// Layer is an entry of the call-layer stack of an Evaler. One is pushed for
// every function invocation and module import.
type Layer struct {
	Name  string
	Kind  string
	index int
	ev    *Evaler
}

// LayerError is returned when navigating past either end of the layer stack.
type LayerError struct {
	Index int
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("layer index %d out of range", e.Index)
}

// DepthError is returned when the layer stack would grow beyond the limit.
type DepthError struct {
	Max int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("maximum call depth %d exceeded", e.Max)
}

// Kind names the error in fatal reports.
func (e *DepthError) Kind() string { return "DEPTH" }

// Index returns the position of the layer in the stack; 0 is the outermost.
func (l *Layer) Index() int { return l.index }

// Above returns the layer that was pushed right before l, which is the caller
// of l.
func (l *Layer) Above() (*Layer, error) {
	return l.at(l.index - 1)
}

// Below returns the layer that was pushed right after l.
func (l *Layer) Below() (*Layer, error) {
	return l.at(l.index + 1)
}

func (l *Layer) at(i int) (*Layer, error) {
	var layer *Layer
	err := diag.Guard("servo.layer", func() error {
		if i < 0 || i >= len(l.ev.layers) {
			return &LayerError{i}
		}
		layer = l.ev.layers[i]
		return nil
	})
	return layer, err
}

// Layers returns a copy of the current layer stack, outermost first.
func (ev *Evaler) Layers() []*Layer {
	return append([]*Layer(nil), ev.layers...)
}

func (ev *Evaler) pushLayer(name, kind string) (*Layer, error) {
	if len(ev.layers) >= ev.maxDepth() {
		return nil, diag.Guard("servo.layer", func() error {
			return &DepthError{ev.maxDepth()}
		})
	}
	layer := &Layer{name, kind, len(ev.layers), ev}
	ev.layers = append(ev.layers, layer)
	return layer, nil
}

func (ev *Evaler) popLayer() {
	ev.layers[len(ev.layers)-1] = nil
	ev.layers = ev.layers[:len(ev.layers)-1]
}
