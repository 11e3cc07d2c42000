package resource

import "fmt"

// BufferKind identifies what a buffer feeds: vertex attributes or element indices.
type BufferKind int

const (
	BufferKindVertex BufferKind = iota
	BufferKindIndex
)

// Usage is the update-frequency hint passed to the driver on allocation.
type Usage int

const (
	// UsageStatic data is written once and drawn many times.
	UsageStatic Usage = iota
	// UsageDynamic data is rewritten repeatedly and drawn many times.
	UsageDynamic
	// UsageStream data is rewritten for nearly every draw.
	UsageStream
)

// ComponentType is the scalar type of one vertex attribute component.
type ComponentType int

const (
	ComponentFloat32 ComponentType = iota
	ComponentInt8
	ComponentUint8
	ComponentInt16
	ComponentUint16
	ComponentInt32
	ComponentUint32
)

// Size returns the component size in bytes.
func (c ComponentType) Size() int {
	switch c {
	case ComponentInt8, ComponentUint8:
		return 1
	case ComponentInt16, ComponentUint16:
		return 2
	}
	return 4
}

// IndexType is the element type of an index buffer.
type IndexType int

const (
	IndexUint16 IndexType = iota
	IndexUint8
	IndexUint32
)

// Size returns the index size in bytes.
func (t IndexType) Size() int {
	switch t {
	case IndexUint8:
		return 1
	case IndexUint32:
		return 4
	}
	return 2
}

// VertexAttribute describes one named attribute stored in a vertex buffer. A mat4 attribute is
// described as a single attribute with 16 components; the device splits it across locations.
type VertexAttribute struct {
	Name       string
	Components int
	Type       ComponentType
	Normalized bool
	// Offset is the byte offset of the attribute inside one vertex.
	Offset int
}

// VertexLayout is the interleaved layout of a vertex buffer.
type VertexLayout struct {
	Attributes []VertexAttribute
	// Stride is the size in bytes of one vertex.
	Stride int
}

// Interleaved builds a tightly packed layout, assigning offsets in declaration order.
//
// Parameters:
//   - attrs: the attributes; their Offset fields are ignored
//
// Returns:
//   - VertexLayout: the packed layout
func Interleaved(attrs ...VertexAttribute) VertexLayout {
	layout := VertexLayout{Attributes: make([]VertexAttribute, len(attrs))}
	for i, a := range attrs {
		a.Offset = layout.Stride
		layout.Attributes[i] = a
		layout.Stride += a.Components * a.Type.Size()
	}
	return layout
}

// Attribute looks an attribute up by name.
func (l VertexLayout) Attribute(name string) (VertexAttribute, bool) {
	for _, a := range l.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return VertexAttribute{}, false
}

// buffer is the implementation of the Buffer interface.
type buffer struct {
	base
	bufferKind BufferKind
	usage      Usage
	data       []byte
	layout     VertexLayout
	indexType  IndexType

	writeOffset, writeLength int
}

// Buffer is the logical description of a vertex or index buffer.
type Buffer interface {
	Resource

	// BufferKind reports whether this is a vertex or an index buffer.
	//
	// Returns:
	//   - BufferKind: vertex or index
	BufferKind() BufferKind

	// Usage returns the update-frequency hint.
	//
	// Returns:
	//   - Usage: static, dynamic or stream
	Usage() Usage

	// Data returns the CPU-side contents.
	//
	// Returns:
	//   - []byte: the buffer contents
	Data() []byte

	// Size returns the contents size in bytes.
	//
	// Returns:
	//   - int: size in bytes
	Size() int

	// Layout returns the vertex layout (zero for index buffers).
	//
	// Returns:
	//   - VertexLayout: the attribute layout
	Layout() VertexLayout

	// IndexType returns the index element type (meaningless for vertex buffers).
	//
	// Returns:
	//   - IndexType: the element type
	IndexType() IndexType

	// VertexCount returns how many whole vertices the data holds.
	//
	// Returns:
	//   - int: number of vertices (0 for index buffers)
	VertexCount() int

	// IndexCount returns how many indices the data holds.
	//
	// Returns:
	//   - int: number of indices (0 for vertex buffers)
	IndexCount() int

	// SetData replaces the contents. Raises EventSizeChanged when the size differs, otherwise EventDataChanged.
	//
	// Parameters:
	//   - data: the new contents
	SetData(data []byte)

	// SetSubData overwrites part of the contents and raises EventDataChanged.
	//
	// Parameters:
	//   - offset: byte offset of the write
	//   - data: bytes to write
	//
	// Returns:
	//   - error: an error if the write falls outside the buffer
	SetSubData(offset int, data []byte) error

	// LastWrite returns the byte range touched by the most recent SetData or SetSubData.
	//
	// Returns:
	//   - int: offset of the write
	//   - int: length of the write
	LastWrite() (offset, length int)
}

var _ Buffer = &buffer{}

// NewVertexBuffer creates a logical vertex buffer.
//
// Parameters:
//   - name: debug name
//   - layout: the interleaved attribute layout
//   - data: initial contents
//   - options: builder options (usage)
//
// Returns:
//   - Buffer: the new logical vertex buffer
func NewVertexBuffer(name string, layout VertexLayout, data []byte, options ...BufferBuilderOption) Buffer {
	b := &buffer{base: newBase(KindBuffer, name), bufferKind: BufferKindVertex, layout: layout, data: data}
	b.self = b
	for _, opt := range options {
		opt(b)
	}
	b.writeLength = len(data)
	return b
}

// NewIndexBuffer creates a logical index buffer.
//
// Parameters:
//   - name: debug name
//   - typ: the index element type
//   - data: initial contents
//   - options: builder options (usage)
//
// Returns:
//   - Buffer: the new logical index buffer
func NewIndexBuffer(name string, typ IndexType, data []byte, options ...BufferBuilderOption) Buffer {
	b := &buffer{base: newBase(KindBuffer, name), bufferKind: BufferKindIndex, indexType: typ, data: data}
	b.self = b
	for _, opt := range options {
		opt(b)
	}
	b.writeLength = len(data)
	return b
}

func (b *buffer) BufferKind() BufferKind {
	return b.bufferKind
}

func (b *buffer) Usage() Usage {
	return b.usage
}

func (b *buffer) Data() []byte {
	return b.data
}

func (b *buffer) Size() int {
	return len(b.data)
}

func (b *buffer) Layout() VertexLayout {
	return b.layout
}

func (b *buffer) IndexType() IndexType {
	return b.indexType
}

func (b *buffer) VertexCount() int {
	if b.bufferKind != BufferKindVertex || b.layout.Stride == 0 {
		return 0
	}
	return len(b.data) / b.layout.Stride
}

func (b *buffer) IndexCount() int {
	if b.bufferKind != BufferKindIndex {
		return 0
	}
	return len(b.data) / b.indexType.Size()
}

func (b *buffer) SetData(data []byte) {
	sizeChanged := len(data) != len(b.data)
	b.data = data
	b.writeOffset, b.writeLength = 0, len(data)
	if sizeChanged {
		b.notify(EventSizeChanged)
		return
	}
	b.notify(EventDataChanged)
}

func (b *buffer) SetSubData(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("write [%d, %d) outside buffer %q of size %d", offset, offset+len(data), b.name, len(b.data))
	}
	copy(b.data[offset:], data)
	b.writeOffset, b.writeLength = offset, len(data)
	b.notify(EventDataChanged)
	return nil
}

func (b *buffer) LastWrite() (offset, length int) {
	return b.writeOffset, b.writeLength
}
