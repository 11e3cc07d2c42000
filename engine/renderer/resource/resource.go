// Package resource defines the long-lived logical GPU resources owned by the application layer:
// shaders, programs, buffers, textures and render targets. A logical resource carries
// configuration and pixel/vertex data and announces lifecycle changes to its listeners. It never
// holds a GPU handle; the render device creates and owns those, keyed by the resource's ID, so a
// resource keeps its identity across a context loss.
package resource

import (
	"fmt"
	"slices"
	"sync/atomic"
)

// ID is the process-unique identity of a logical resource.
type ID uint64

var lastID atomic.Uint64

func nextID() ID {
	return ID(lastID.Add(1))
}

// Kind identifies the type of a logical resource.
type Kind int

const (
	KindShader Kind = iota
	KindProgram
	KindBuffer
	KindTexture
	KindRenderTarget
)

func (k Kind) String() string {
	switch k {
	case KindShader:
		return "shader"
	case KindProgram:
		return "program"
	case KindBuffer:
		return "buffer"
	case KindTexture:
		return "texture"
	case KindRenderTarget:
		return "render target"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is a lifecycle notification raised by a logical resource.
type Event int

const (
	// EventReleased is raised once when the owner releases the resource.
	EventReleased Event = iota
	// EventDataChanged is raised when contents change but the allocation size does not.
	EventDataChanged
	// EventSizeChanged is raised when the allocation size changes.
	EventSizeChanged
	// EventParametersChanged is raised when sampling or usage parameters change.
	EventParametersChanged
)

func (e Event) String() string {
	switch e {
	case EventReleased:
		return "released"
	case EventDataChanged:
		return "dataChanged"
	case EventSizeChanged:
		return "sizeChanged"
	case EventParametersChanged:
		return "parametersChanged"
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

// Listener receives lifecycle events from the resources it subscribed to.
type Listener interface {
	// OnResourceEvent is called synchronously on the goroutine that changed the resource.
	//
	// Parameters:
	//   - r: the resource raising the event
	//   - e: the event
	OnResourceEvent(r Resource, e Event)
}

// Resource is the common contract of every logical resource.
type Resource interface {
	// ID returns the resource's stable identity.
	//
	// Returns:
	//   - ID: the process-unique identity
	ID() ID

	// Kind returns the resource type.
	//
	// Returns:
	//   - Kind: the resource type
	Kind() Kind

	// Name returns the debug name given at construction.
	//
	// Returns:
	//   - string: the debug name
	Name() string

	// Subscribe registers a listener for this resource's events. Subscribing twice is a no-op.
	//
	// Parameters:
	//   - l: the listener to add
	Subscribe(l Listener)

	// Unsubscribe removes a previously registered listener.
	//
	// Parameters:
	//   - l: the listener to remove
	Unsubscribe(l Listener)

	// Release raises EventReleased and drops all listeners. Released already reports true while
	// listeners handle the event. Subsequent calls are no-ops.
	Release()

	// Released reports whether Release has been called.
	//
	// Returns:
	//   - bool: true once released
	Released() bool
}

// base carries identity and listener bookkeeping shared by all resource kinds.
type base struct {
	id        ID
	kind      Kind
	name      string
	listeners []Listener
	released  bool
	// self is the outer resource passed to listeners.
	self Resource
}

func newBase(kind Kind, name string) base {
	return base{id: nextID(), kind: kind, name: name}
}

func (b *base) ID() ID {
	return b.id
}

func (b *base) Kind() Kind {
	return b.kind
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Subscribe(l Listener) {
	if b.released || slices.Contains(b.listeners, l) {
		return
	}
	b.listeners = append(b.listeners, l)
}

func (b *base) Unsubscribe(l Listener) {
	if i := slices.Index(b.listeners, l); i >= 0 {
		b.listeners = slices.Delete(b.listeners, i, i+1)
	}
}

func (b *base) Release() {
	if b.released {
		return
	}
	b.released = true
	b.notify(EventReleased)
	b.listeners = nil
}

func (b *base) Released() bool {
	return b.released
}

// notify delivers e to a snapshot of the listeners so that listeners may unsubscribe while handling it.
func (b *base) notify(e Event) {
	for _, l := range slices.Clone(b.listeners) {
		l.OnResourceEvent(b.self, e)
	}
}
