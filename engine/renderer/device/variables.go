package device

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// VariableKind is the shape of a program variable node.
type VariableKind int

const (
	// VariableLeaf is a single active uniform (possibly an array of a basic type).
	VariableLeaf VariableKind = iota
	// VariableArray is an array of structs, or an array of arrays, indexed with Element.
	VariableArray
	// VariableStruct is a struct uniform whose members are reached with Field. The root of a
	// program's tree is a struct.
	VariableStruct
)

// ProgramVariable is one node of the uniform tree of a linked program.
type ProgramVariable interface {
	// Name returns the node's own name: the member name, or "[i]" for array elements.
	//
	// Returns:
	//   - string: the node name
	Name() string

	// Path returns the full uniform path, e.g. "lights[1].color".
	//
	// Returns:
	//   - string: the path accepted by SetProgramVariable
	Path() string

	// Kind returns whether the node is a leaf, an array or a struct.
	//
	// Returns:
	//   - VariableKind: the node kind
	Kind() VariableKind

	// Field returns a struct member, or nil.
	//
	// Parameters:
	//   - name: the member name
	//
	// Returns:
	//   - ProgramVariable: the member node
	Field(name string) ProgramVariable

	// Fields returns the struct member names in declaration order.
	//
	// Returns:
	//   - []string: the member names
	Fields() []string

	// Element returns an array element, or nil.
	//
	// Parameters:
	//   - i: the element index
	//
	// Returns:
	//   - ProgramVariable: the element node
	Element(i int) ProgramVariable

	// Len returns the number of elements of an array node, or the declared size of a leaf.
	//
	// Returns:
	//   - int: the length
	Len() int

	// Type returns the GL type of a leaf.
	//
	// Returns:
	//   - glapi.Enum: e.g. glapi.FLOAT_VEC3, glapi.SAMPLER_2D
	Type() glapi.Enum

	// Size returns the declared array size of a leaf (1 for non-arrays).
	//
	// Returns:
	//   - int: the declared size
	Size() int

	// Location returns the uniform location of a leaf in the current context.
	//
	// Returns:
	//   - glapi.Uniform: the location
	Location() glapi.Uniform

	// IsSampler reports whether the leaf is a sampler.
	//
	// Returns:
	//   - bool: true for sampler2D and samplerCube leaves
	IsSampler() bool

	// Value returns the value last made visible to the GPU, nil before the first upload.
	//
	// Returns:
	//   - any: the current value
	Value() any

	// Pending returns the value given to the last Set.
	//
	// Returns:
	//   - any: the pending value
	Pending() any

	// Set stages a new value. It is uploaded by the next Apply with this program bound.
	//
	// Parameters:
	//   - value: a value matching the leaf type
	//
	// Returns:
	//   - error: ErrInvalidConfiguration if the value does not fit the leaf
	Set(value any) error
}

// uniformData is a converted uniform value ready for upload.
type uniformData struct {
	floats []float32
	ints   []int32
}

func (u uniformData) equal(o uniformData) bool {
	if u.floats == nil && u.ints == nil {
		return false
	}
	return slices.Equal(u.floats, o.floats) && slices.Equal(u.ints, o.ints)
}

// uploader is the type-specialised upload for one uniform type, picked once at link time.
type uploader struct {
	components int
	ints       bool
	call       func(f glapi.Functions, loc glapi.Uniform, d uniformData)
}

var uploaders = map[glapi.Enum]uploader{
	glapi.FLOAT:      {1, false, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform1fv(l, d.floats) }},
	glapi.FLOAT_VEC2: {2, false, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform2fv(l, d.floats) }},
	glapi.FLOAT_VEC3: {3, false, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform3fv(l, d.floats) }},
	glapi.FLOAT_VEC4: {4, false, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform4fv(l, d.floats) }},
	glapi.FLOAT_MAT2: {4, false, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.UniformMatrix2fv(l, d.floats) }},
	glapi.FLOAT_MAT3: {9, false, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.UniformMatrix3fv(l, d.floats) }},
	glapi.FLOAT_MAT4: {16, false, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.UniformMatrix4fv(l, d.floats) }},
	glapi.INT:        {1, true, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform1iv(l, d.ints) }},
	glapi.INT_VEC2:   {2, true, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform2iv(l, d.ints) }},
	glapi.INT_VEC3:   {3, true, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform3iv(l, d.ints) }},
	glapi.INT_VEC4:   {4, true, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform4iv(l, d.ints) }},
	glapi.BOOL:       {1, true, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform1iv(l, d.ints) }},
	glapi.BOOL_VEC2:  {2, true, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform2iv(l, d.ints) }},
	glapi.BOOL_VEC3:  {3, true, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform3iv(l, d.ints) }},
	glapi.BOOL_VEC4:  {4, true, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform4iv(l, d.ints) }},

	glapi.SAMPLER_2D:   {1, true, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform1iv(l, d.ints) }},
	glapi.SAMPLER_CUBE: {1, true, func(f glapi.Functions, l glapi.Uniform, d uniformData) { f.Uniform1iv(l, d.ints) }},
}

// activeUniform is one entry of a program's active uniform list.
type activeUniform struct {
	name     string
	size     int
	typ      glapi.Enum
	location glapi.Uniform
}

// variable is the implementation of the ProgramVariable interface.
type variable struct {
	owner *programVariables
	name  string
	path  string
	kind  VariableKind

	fields   map[string]*variable
	order    []string
	elements []*variable

	typ      glapi.Enum
	size     int
	location glapi.Uniform
	upload   *uploader

	current  any
	pending  any
	data     uniformData
	uploaded uniformData
	dirty    bool

	// target, textures and units are set for sampler leaves, one texture and unit per slot.
	target   glapi.Enum
	textures []resource.Resource
	units    []int
}

var _ ProgramVariable = &variable{}

func (v *variable) Name() string {
	return v.name
}

func (v *variable) Path() string {
	return v.path
}

func (v *variable) Kind() VariableKind {
	return v.kind
}

func (v *variable) Field(name string) ProgramVariable {
	if f, ok := v.fields[name]; ok {
		return f
	}
	return nil
}

func (v *variable) Fields() []string {
	return slices.Clone(v.order)
}

func (v *variable) Element(i int) ProgramVariable {
	if i < 0 || i >= len(v.elements) || v.elements[i] == nil {
		return nil
	}
	return v.elements[i]
}

func (v *variable) Len() int {
	if v.kind == VariableLeaf {
		return v.size
	}
	return len(v.elements)
}

func (v *variable) Type() glapi.Enum {
	return v.typ
}

func (v *variable) Size() int {
	return v.size
}

func (v *variable) Location() glapi.Uniform {
	return v.location
}

func (v *variable) IsSampler() bool {
	return v.typ == glapi.SAMPLER_2D || v.typ == glapi.SAMPLER_CUBE
}

func (v *variable) Value() any {
	return v.current
}

func (v *variable) Pending() any {
	return v.pending
}

func (v *variable) Set(value any) error {
	if v.kind != VariableLeaf {
		return fmt.Errorf("%w: %q is not a leaf uniform", ErrInvalidConfiguration, v.path)
	}
	if v.IsSampler() {
		return v.setTextures(value)
	}
	if v.upload == nil {
		return fmt.Errorf("%w: uniform %q has unsupported type 0x%X", ErrInvalidConfiguration, v.path, uint32(v.typ))
	}
	var data uniformData
	var ok bool
	var n int
	if v.upload.ints {
		data.ints, ok = intData(value)
		n = len(data.ints)
	} else {
		data.floats, ok = floatData(value)
		n = len(data.floats)
	}
	if !ok {
		return fmt.Errorf("%w: %T cannot be assigned to uniform %q", ErrInvalidConfiguration, value, v.path)
	}
	if n == 0 || n%v.upload.components != 0 || n > v.upload.components*v.size {
		return fmt.Errorf("%w: %d components cannot be assigned to uniform %q (%d x %d)", ErrInvalidConfiguration, n, v.path, v.size, v.upload.components)
	}
	v.pending = value
	v.data = data
	v.owner.markDirty(v)
	return nil
}

// setTextures stages the textures sampled by a sampler leaf. Render targets stand for their first
// color texture; the substitution happens when the sampler is resolved.
func (v *variable) setTextures(value any) error {
	var list []resource.Resource
	switch t := value.(type) {
	case nil:
	case resource.Texture:
		list = []resource.Resource{t}
	case resource.RenderTarget:
		list = []resource.Resource{t}
	case []resource.Texture:
		for _, e := range t {
			list = append(list, e)
		}
	case []resource.RenderTarget:
		for _, e := range t {
			list = append(list, e)
		}
	default:
		return fmt.Errorf("%w: %T cannot be assigned to sampler %q", ErrInvalidConfiguration, value, v.path)
	}
	if len(list) > v.size {
		return fmt.Errorf("%w: %d textures for sampler %q of size %d", ErrInvalidConfiguration, len(list), v.path, v.size)
	}
	for _, r := range list {
		if tex := samplerTexture(r); tex != nil && textureTarget(tex.Target()) != v.target {
			return fmt.Errorf("%w: texture %q does not match sampler %q", ErrInvalidConfiguration, tex.Name(), v.path)
		}
	}
	v.textures = make([]resource.Resource, v.size)
	copy(v.textures, list)
	v.pending = value
	return nil
}

// samplerTexture resolves what a sampler slot actually samples.
func samplerTexture(r resource.Resource) resource.Texture {
	switch t := r.(type) {
	case resource.Texture:
		return t
	case resource.RenderTarget:
		return t.ColorTexture(0)
	}
	return nil
}

// programVariables is the uniform tree of one linked program plus its dirty list.
type programVariables struct {
	root     *variable
	leaves   map[string]*variable
	samplers []*variable
	dirty    []*variable
}

func newProgramVariables(uniforms []activeUniform) *programVariables {
	pv := &programVariables{leaves: make(map[string]*variable)}
	pv.root = &variable{owner: pv, kind: VariableStruct}
	for _, u := range uniforms {
		pv.add(u)
	}
	return pv
}

// add inserts one active uniform. GL reports arrays of basic types once, as "name[0]" with the
// array size; arrays of structs are reported member by member ("lights[1].color").
func (pv *programVariables) add(u activeUniform) {
	path := strings.TrimSuffix(u.name, "[0]")
	node := pv.root
	parts := strings.Split(path, ".")
	for i, part := range parts {
		name, indices := splitIndices(part)
		node = node.field(name)
		for _, idx := range indices {
			node.kind = VariableArray
			node = node.element(idx)
		}
		if i < len(parts)-1 {
			node.kind = VariableStruct
		}
	}
	node.kind = VariableLeaf
	node.typ = u.typ
	node.size = max(u.size, 1)
	node.location = u.location
	if up, ok := uploaders[u.typ]; ok {
		node.upload = &up
	}
	if node.IsSampler() {
		node.target = glapi.TEXTURE_2D
		if u.typ == glapi.SAMPLER_CUBE {
			node.target = glapi.TEXTURE_CUBE_MAP
		}
		node.units = slices.Repeat([]int{-1}, node.size)
		pv.samplers = append(pv.samplers, node)
	}
	pv.leaves[path] = node
	if path != u.name {
		pv.leaves[u.name] = node
	}
}

func (v *variable) field(name string) *variable {
	if f, ok := v.fields[name]; ok {
		return f
	}
	if v.fields == nil {
		v.fields = make(map[string]*variable)
	}
	path := name
	if v.path != "" {
		path = v.path + "." + name
	}
	f := &variable{owner: v.owner, name: name, path: path}
	v.fields[name] = f
	v.order = append(v.order, name)
	return f
}

func (v *variable) element(i int) *variable {
	for len(v.elements) <= i {
		v.elements = append(v.elements, nil)
	}
	if v.elements[i] == nil {
		name := "[" + strconv.Itoa(i) + "]"
		v.elements[i] = &variable{owner: v.owner, name: name, path: v.path + name}
	}
	return v.elements[i]
}

// splitIndices splits "lights[1][2]" into "lights" and [1 2].
func splitIndices(part string) (string, []int) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		return part, nil
	}
	name := part[:open]
	var indices []int
	for rest := part[open:]; strings.HasPrefix(rest, "["); {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		if n, err := strconv.Atoi(rest[1:end]); err == nil {
			indices = append(indices, n)
		}
		rest = rest[end+1:]
	}
	return name, indices
}

func (pv *programVariables) lookup(name string) *variable {
	return pv.leaves[name]
}

func (pv *programVariables) markDirty(v *variable) {
	if v.dirty {
		return
	}
	v.dirty = true
	pv.dirty = append(pv.dirty, v)
}

// upload sends every dirty leaf to the bound program and clears the dirty list. Leaves whose data
// matches the last upload are skipped.
func (pv *programVariables) upload(f glapi.Functions, stats *Stats) {
	for _, v := range pv.dirty {
		v.dirty = false
		if v.data.equal(v.uploaded) {
			stats.CallsAvoided++
			continue
		}
		v.upload.call(f, v.location, v.data)
		v.uploaded = v.data
		v.current = v.pending
		stats.UniformUploads++
	}
	pv.dirty = pv.dirty[:0]
}

// pendingValues returns the last value staged on every leaf, keyed by path.
func (pv *programVariables) pendingValues() map[string]any {
	values := make(map[string]any)
	for path, v := range pv.leaves {
		if v.pending != nil && path == v.path {
			values[path] = v.pending
		}
	}
	return values
}

func floatData(value any) ([]float32, bool) {
	switch v := value.(type) {
	case float32:
		return []float32{v}, true
	case float64:
		return []float32{float32(v)}, true
	case []float32:
		return slices.Clone(v), true
	case mgl32.Vec2:
		return v[:], true
	case mgl32.Vec3:
		return v[:], true
	case mgl32.Vec4:
		return v[:], true
	case mgl32.Mat2:
		return v[:], true
	case mgl32.Mat3:
		return v[:], true
	case mgl32.Mat4:
		return v[:], true
	case []mgl32.Vec2:
		return flatten(v, func(e mgl32.Vec2) []float32 { return e[:] }), true
	case []mgl32.Vec3:
		return flatten(v, func(e mgl32.Vec3) []float32 { return e[:] }), true
	case []mgl32.Vec4:
		return flatten(v, func(e mgl32.Vec4) []float32 { return e[:] }), true
	case []mgl32.Mat3:
		return flatten(v, func(e mgl32.Mat3) []float32 { return e[:] }), true
	case []mgl32.Mat4:
		return flatten(v, func(e mgl32.Mat4) []float32 { return e[:] }), true
	}
	return nil, false
}

func intData(value any) ([]int32, bool) {
	switch v := value.(type) {
	case int:
		return []int32{int32(v)}, true
	case int32:
		return []int32{v}, true
	case bool:
		return []int32{boolInt(v)}, true
	case []int32:
		return slices.Clone(v), true
	case []int:
		out := make([]int32, len(v))
		for i, e := range v {
			out[i] = int32(e)
		}
		return out, true
	case []bool:
		out := make([]int32, len(v))
		for i, e := range v {
			out[i] = boolInt(e)
		}
		return out, true
	}
	return nil, false
}

func flatten[T any](values []T, components func(T) []float32) []float32 {
	var out []float32
	for _, v := range values {
		out = append(out, components(v)...)
	}
	return out
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
