// Package glapitest provides Recorder, an in-memory glapi.Functions that logs every call and keeps
// the bindings, fixed-function state and objects a real context would, so tests can count calls
// and compare state snapshots without a GPU.
package glapitest

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
)

// Call is one recorded GL call.
type Call struct {
	Name string
	Args []any
}

// AttribPointer is the vertex attribute setup of one location.
type AttribPointer struct {
	Buffer     glapi.Buffer
	Size       int
	Type       glapi.Enum
	Normalized bool
	Stride     int
	Offset     int
}

// State is the context state that rendering depends on. Disabled capabilities, disabled
// attributes and empty texture slots are absent from the maps, so two snapshots compare equal with
// assert.Equal exactly when the context would behave the same.
type State struct {
	ArrayBuffer        glapi.Buffer
	ElementArrayBuffer glapi.Buffer
	ActiveUnit         int
	Textures           map[int]map[glapi.Enum]glapi.Texture
	Program            glapi.Program
	Framebuffer        glapi.Framebuffer
	Renderbuffer       glapi.Renderbuffer
	EnabledAttribs     map[glapi.Attrib]bool
	AttribPointers     map[glapi.Attrib]AttribPointer
	Capabilities       map[glapi.Enum]bool
	BlendSrc           glapi.Enum
	BlendDst           glapi.Enum
	DepthFunc          glapi.Enum
	CullFace           glapi.Enum
	Viewport           [4]int
	Scissor            [4]int
	ClearColor         [4]float32
	ClearDepth         float32
}

func (s State) clone() State {
	s.Textures = make(map[int]map[glapi.Enum]glapi.Texture, len(s.Textures))
	for u, m := range s.Textures {
		s.Textures[u] = maps.Clone(m)
	}
	s.EnabledAttribs = maps.Clone(s.EnabledAttribs)
	s.AttribPointers = maps.Clone(s.AttribPointers)
	s.Capabilities = maps.Clone(s.Capabilities)
	return s
}

// Texture is a recorded texture object.
type Texture struct {
	Target         glapi.Enum
	InternalFormat glapi.Enum
	Width, Height  int
	// Images holds the last upload per image target (TEXTURE_2D or a cube face).
	Images    map[glapi.Enum][]byte
	Params    map[glapi.Enum]int
	Mipmapped bool
}

type bufferObject struct {
	data  []byte
	usage glapi.Enum
}

type framebufferObject struct {
	attachments map[glapi.Enum]uint32
	drawBuffers []glapi.Enum
}

type renderbufferObject struct {
	format        glapi.Enum
	width, height int
}

type shaderObject struct {
	typ      glapi.Enum
	source   string
	compiled bool
	log      string
	decls    interfaceDecls
}

type uniformInfo struct {
	name     string
	typ      glapi.Enum
	size     int
	location glapi.Uniform
}

type attribInfo struct {
	name     string
	typ      glapi.Enum
	location int
}

type programObject struct {
	shaders  []glapi.Shader
	linked   bool
	log      string
	uniforms []uniformInfo
	attribs  []attribInfo
	values   map[glapi.Uniform]any
}

// Recorder implements glapi.Functions in memory. The zero value is not usable; call New.
type Recorder struct {
	// Limits answers GetInteger.
	Limits map[glapi.Enum]int
	// Version answers GetString(VERSION).
	Version string
	// Extensions answers GetString(EXTENSIONS), space separated.
	Extensions []string
	// FailLink makes every LinkProgram fail.
	FailLink bool
	// OnCall runs after each call is recorded, before it takes effect.
	OnCall func(name string)

	calls  []Call
	errors []glapi.Enum
	lost   bool
	state  State
	next   map[string]uint32

	buffers       map[glapi.Buffer]*bufferObject
	textures      map[glapi.Texture]*Texture
	framebuffers  map[glapi.Framebuffer]*framebufferObject
	renderbuffers map[glapi.Renderbuffer]*renderbufferObject
	shaders       map[glapi.Shader]*shaderObject
	programs      map[glapi.Program]*programObject
}

var _ glapi.Functions = &Recorder{}

// New returns a recorder in the state of a fresh GL 4.1 core context.
func New() *Recorder {
	return &Recorder{
		Limits: map[glapi.Enum]int{
			glapi.MAX_TEXTURE_SIZE:                 4096,
			glapi.MAX_RENDERBUFFER_SIZE:            4096,
			glapi.MAX_DRAW_BUFFERS:                 8,
			glapi.MAX_COLOR_ATTACHMENTS:            8,
			glapi.MAX_VERTEX_ATTRIBS:               16,
			glapi.MAX_COMBINED_TEXTURE_IMAGE_UNITS: 16,
		},
		Version: "4.1 glapitest",
		state: State{
			Textures:       make(map[int]map[glapi.Enum]glapi.Texture),
			EnabledAttribs: make(map[glapi.Attrib]bool),
			AttribPointers: make(map[glapi.Attrib]AttribPointer),
			Capabilities:   make(map[glapi.Enum]bool),
			BlendSrc:       glapi.ONE,
			BlendDst:       glapi.ZERO,
			DepthFunc:      glapi.LESS,
			CullFace:       glapi.BACK,
			ClearDepth:     1,
		},
		next:          make(map[string]uint32),
		buffers:       make(map[glapi.Buffer]*bufferObject),
		textures:      make(map[glapi.Texture]*Texture),
		framebuffers:  make(map[glapi.Framebuffer]*framebufferObject),
		renderbuffers: make(map[glapi.Renderbuffer]*renderbufferObject),
		shaders:       make(map[glapi.Shader]*shaderObject),
		programs:      make(map[glapi.Program]*programObject),
	}
}

// record logs a call and reports whether it should take effect (the context is not lost).
func (r *Recorder) record(name string, args ...any) bool {
	r.calls = append(r.calls, Call{Name: name, Args: args})
	if r.OnCall != nil {
		r.OnCall(name)
	}
	return !r.lost
}

func (r *Recorder) fail(code glapi.Enum) {
	r.errors = append(r.errors, code)
}

func (r *Recorder) handle(kind string) uint32 {
	r.next[kind]++
	return r.next[kind]
}

// Lose simulates a context loss: later calls are recorded but have no effect, creations return
// zero and compile and link status queries report failure.
func (r *Recorder) Lose() {
	r.lost = true
}

// Calls returns every recorded call in order.
func (r *Recorder) Calls() []Call {
	return slices.Clone(r.calls)
}

// CallNames returns the names of every recorded call in order.
func (r *Recorder) CallNames() []string {
	names := make([]string, len(r.calls))
	for i, c := range r.calls {
		names[i] = c.Name
	}
	return names
}

// Count returns how many calls named name were recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Total returns the number of recorded calls.
func (r *Recorder) Total() int {
	return len(r.calls)
}

// Last returns the most recent call named name.
func (r *Recorder) Last(name string) (Call, bool) {
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].Name == name {
			return r.calls[i], true
		}
	}
	return Call{}, false
}

// Reset clears the call log. State and objects are kept.
func (r *Recorder) Reset() {
	r.calls = nil
}

// Errors returns the GL errors raised by invalid calls and not yet read with GetError.
func (r *Recorder) Errors() []glapi.Enum {
	return slices.Clone(r.errors)
}

// Snapshot returns a copy of the current context state. Values without effect are zeroed: the
// blend function while blending is off, the depth function, cull face and scissor box while their
// tests are off, and the pointers of disabled attributes.
func (r *Recorder) Snapshot() State {
	s := r.state.clone()
	if !s.Capabilities[glapi.BLEND] {
		s.BlendSrc, s.BlendDst = 0, 0
	}
	if !s.Capabilities[glapi.DEPTH_TEST] {
		s.DepthFunc = 0
	}
	if !s.Capabilities[glapi.CULL_FACE] {
		s.CullFace = 0
	}
	if !s.Capabilities[glapi.SCISSOR_TEST] {
		s.Scissor = [4]int{}
	}
	maps.DeleteFunc(s.AttribPointers, func(a glapi.Attrib, _ AttribPointer) bool {
		return !s.EnabledAttribs[a]
	})
	return s
}

// Uniform returns the last value uploaded to a uniform of program p, as []float32 or []int32.
func (r *Recorder) Uniform(p glapi.Program, name string) any {
	prog, ok := r.programs[p]
	if !ok {
		return nil
	}
	loc := prog.location(name)
	if loc < 0 {
		return nil
	}
	return prog.values[loc]
}

// BufferContents returns the data store of a buffer.
func (r *Recorder) BufferContents(b glapi.Buffer) []byte {
	if o, ok := r.buffers[b]; ok {
		return slices.Clone(o.data)
	}
	return nil
}

// TextureObject returns a copy of a texture object, or nil.
func (r *Recorder) TextureObject(t glapi.Texture) *Texture {
	o, ok := r.textures[t]
	if !ok {
		return nil
	}
	c := *o
	c.Images = maps.Clone(o.Images)
	c.Params = maps.Clone(o.Params)
	return &c
}

// FramebufferAttachment returns the object attached to a framebuffer attachment point.
func (r *Recorder) FramebufferAttachment(fb glapi.Framebuffer, attachment glapi.Enum) uint32 {
	if o, ok := r.framebuffers[fb]; ok {
		return o.attachments[attachment]
	}
	return 0
}

// DrawBuffersOf returns the draw buffers set on a framebuffer.
func (r *Recorder) DrawBuffersOf(fb glapi.Framebuffer) []glapi.Enum {
	if o, ok := r.framebuffers[fb]; ok {
		return slices.Clone(o.drawBuffers)
	}
	return nil
}

// Live returns the number of live objects of each kind: "buffer", "texture", "framebuffer",
// "renderbuffer", "shader" and "program".
func (r *Recorder) Live() map[string]int {
	return map[string]int{
		"buffer":       len(r.buffers),
		"texture":      len(r.textures),
		"framebuffer":  len(r.framebuffers),
		"renderbuffer": len(r.renderbuffers),
		"shader":       len(r.shaders),
		"program":      len(r.programs),
	}
}

func (r *Recorder) CreateBuffer() glapi.Buffer {
	if !r.record("CreateBuffer") {
		return 0
	}
	b := glapi.Buffer(r.handle("buffer"))
	r.buffers[b] = &bufferObject{}
	return b
}

func (r *Recorder) DeleteBuffer(b glapi.Buffer) {
	if !r.record("DeleteBuffer", b) {
		return
	}
	delete(r.buffers, b)
	if r.state.ArrayBuffer == b {
		r.state.ArrayBuffer = 0
	}
	if r.state.ElementArrayBuffer == b {
		r.state.ElementArrayBuffer = 0
	}
}

func (r *Recorder) BindBuffer(target glapi.Enum, b glapi.Buffer) {
	if !r.record("BindBuffer", target, b) {
		return
	}
	if _, ok := r.buffers[b]; b != 0 && !ok {
		r.fail(glapi.INVALID_OPERATION)
		return
	}
	switch target {
	case glapi.ARRAY_BUFFER:
		r.state.ArrayBuffer = b
	case glapi.ELEMENT_ARRAY_BUFFER:
		r.state.ElementArrayBuffer = b
	default:
		r.fail(glapi.INVALID_ENUM)
	}
}

func (r *Recorder) boundBuffer(target glapi.Enum) *bufferObject {
	b := r.state.ArrayBuffer
	if target == glapi.ELEMENT_ARRAY_BUFFER {
		b = r.state.ElementArrayBuffer
	}
	return r.buffers[b]
}

func (r *Recorder) BufferData(target glapi.Enum, size int, data []byte, usage glapi.Enum) {
	if !r.record("BufferData", target, size, usage) {
		return
	}
	o := r.boundBuffer(target)
	if o == nil {
		r.fail(glapi.INVALID_OPERATION)
		return
	}
	o.data = make([]byte, size)
	copy(o.data, data)
	o.usage = usage
}

func (r *Recorder) BufferSubData(target glapi.Enum, offset int, data []byte) {
	if !r.record("BufferSubData", target, offset, len(data)) {
		return
	}
	o := r.boundBuffer(target)
	if o == nil || offset < 0 || offset+len(data) > len(o.data) {
		r.fail(glapi.INVALID_VALUE)
		return
	}
	copy(o.data[offset:], data)
}

func (r *Recorder) CreateTexture() glapi.Texture {
	if !r.record("CreateTexture") {
		return 0
	}
	t := glapi.Texture(r.handle("texture"))
	r.textures[t] = &Texture{Images: make(map[glapi.Enum][]byte), Params: make(map[glapi.Enum]int)}
	return t
}

func (r *Recorder) DeleteTexture(t glapi.Texture) {
	if !r.record("DeleteTexture", t) {
		return
	}
	delete(r.textures, t)
	for unit, targets := range r.state.Textures {
		for target, bound := range targets {
			if bound == t {
				delete(targets, target)
			}
		}
		if len(targets) == 0 {
			delete(r.state.Textures, unit)
		}
	}
}

func (r *Recorder) ActiveTexture(unit glapi.Enum) {
	if !r.record("ActiveTexture", unit) {
		return
	}
	r.state.ActiveUnit = int(unit - glapi.TEXTURE0)
}

func (r *Recorder) BindTexture(target glapi.Enum, t glapi.Texture) {
	if !r.record("BindTexture", target, t) {
		return
	}
	unit := r.state.ActiveUnit
	if t == 0 {
		if targets, ok := r.state.Textures[unit]; ok {
			delete(targets, target)
			if len(targets) == 0 {
				delete(r.state.Textures, unit)
			}
		}
		return
	}
	o, ok := r.textures[t]
	if !ok || (o.Target != 0 && o.Target != target) {
		r.fail(glapi.INVALID_OPERATION)
		return
	}
	o.Target = target
	if r.state.Textures[unit] == nil {
		r.state.Textures[unit] = make(map[glapi.Enum]glapi.Texture)
	}
	r.state.Textures[unit][target] = t
}

func (r *Recorder) boundTexture(target glapi.Enum) *Texture {
	if target >= glapi.TEXTURE_CUBE_MAP_POSITIVE_X && target < glapi.TEXTURE_CUBE_MAP_POSITIVE_X+6 {
		target = glapi.TEXTURE_CUBE_MAP
	}
	return r.textures[r.state.Textures[r.state.ActiveUnit][target]]
}

func (r *Recorder) TexImage2D(target glapi.Enum, level int, internalFormat glapi.Enum, width, height int, format, typ glapi.Enum, data []byte) {
	if !r.record("TexImage2D", target, level, internalFormat, width, height, format, typ) {
		return
	}
	o := r.boundTexture(target)
	if o == nil {
		r.fail(glapi.INVALID_OPERATION)
		return
	}
	o.InternalFormat = internalFormat
	o.Width, o.Height = width, height
	o.Images[target] = slices.Clone(data)
}

func (r *Recorder) TexParameteri(target, pname glapi.Enum, param int) {
	if !r.record("TexParameteri", target, pname, param) {
		return
	}
	if o := r.boundTexture(target); o != nil {
		o.Params[pname] = param
	} else {
		r.fail(glapi.INVALID_OPERATION)
	}
}

func (r *Recorder) GenerateMipmap(target glapi.Enum) {
	if !r.record("GenerateMipmap", target) {
		return
	}
	if o := r.boundTexture(target); o != nil {
		o.Mipmapped = true
	} else {
		r.fail(glapi.INVALID_OPERATION)
	}
}

func (r *Recorder) CreateFramebuffer() glapi.Framebuffer {
	if !r.record("CreateFramebuffer") {
		return 0
	}
	fb := glapi.Framebuffer(r.handle("framebuffer"))
	r.framebuffers[fb] = &framebufferObject{attachments: make(map[glapi.Enum]uint32)}
	return fb
}

func (r *Recorder) DeleteFramebuffer(fb glapi.Framebuffer) {
	if !r.record("DeleteFramebuffer", fb) {
		return
	}
	delete(r.framebuffers, fb)
	if r.state.Framebuffer == fb {
		r.state.Framebuffer = 0
	}
}

func (r *Recorder) BindFramebuffer(target glapi.Enum, fb glapi.Framebuffer) {
	if !r.record("BindFramebuffer", target, fb) {
		return
	}
	if _, ok := r.framebuffers[fb]; fb != 0 && !ok {
		r.fail(glapi.INVALID_OPERATION)
		return
	}
	r.state.Framebuffer = fb
}

func (r *Recorder) FramebufferTexture2D(target, attachment, texTarget glapi.Enum, t glapi.Texture, level int) {
	if !r.record("FramebufferTexture2D", attachment, texTarget, t, level) {
		return
	}
	if o, ok := r.framebuffers[r.state.Framebuffer]; ok {
		o.attachments[attachment] = uint32(t)
	} else {
		r.fail(glapi.INVALID_OPERATION)
	}
}

func (r *Recorder) CheckFramebufferStatus(target glapi.Enum) glapi.Enum {
	if !r.record("CheckFramebufferStatus", target) {
		return 0
	}
	o, ok := r.framebuffers[r.state.Framebuffer]
	if !ok || len(o.attachments) == 0 {
		return 0x8CD6 // FRAMEBUFFER_INCOMPLETE_ATTACHMENT
	}
	return glapi.FRAMEBUFFER_COMPLETE
}

func (r *Recorder) DrawBuffers(bufs []glapi.Enum) {
	if !r.record("DrawBuffers", slices.Clone(bufs)) {
		return
	}
	if o, ok := r.framebuffers[r.state.Framebuffer]; ok {
		o.drawBuffers = slices.Clone(bufs)
	}
}

func (r *Recorder) CreateRenderbuffer() glapi.Renderbuffer {
	if !r.record("CreateRenderbuffer") {
		return 0
	}
	rb := glapi.Renderbuffer(r.handle("renderbuffer"))
	r.renderbuffers[rb] = &renderbufferObject{}
	return rb
}

func (r *Recorder) DeleteRenderbuffer(rb glapi.Renderbuffer) {
	if !r.record("DeleteRenderbuffer", rb) {
		return
	}
	delete(r.renderbuffers, rb)
	if r.state.Renderbuffer == rb {
		r.state.Renderbuffer = 0
	}
}

func (r *Recorder) BindRenderbuffer(target glapi.Enum, rb glapi.Renderbuffer) {
	if !r.record("BindRenderbuffer", target, rb) {
		return
	}
	r.state.Renderbuffer = rb
}

func (r *Recorder) RenderbufferStorage(target, internalFormat glapi.Enum, width, height int) {
	if !r.record("RenderbufferStorage", internalFormat, width, height) {
		return
	}
	if o, ok := r.renderbuffers[r.state.Renderbuffer]; ok {
		o.format, o.width, o.height = internalFormat, width, height
	} else {
		r.fail(glapi.INVALID_OPERATION)
	}
}

func (r *Recorder) FramebufferRenderbuffer(target, attachment, rbTarget glapi.Enum, rb glapi.Renderbuffer) {
	if !r.record("FramebufferRenderbuffer", attachment, rb) {
		return
	}
	if o, ok := r.framebuffers[r.state.Framebuffer]; ok {
		o.attachments[attachment] = uint32(rb)
	} else {
		r.fail(glapi.INVALID_OPERATION)
	}
}

func (r *Recorder) CreateShader(typ glapi.Enum) glapi.Shader {
	if !r.record("CreateShader", typ) {
		return 0
	}
	s := glapi.Shader(r.handle("shader"))
	r.shaders[s] = &shaderObject{typ: typ}
	return s
}

func (r *Recorder) ShaderSource(s glapi.Shader, src string) {
	if !r.record("ShaderSource", s) {
		return
	}
	if o, ok := r.shaders[s]; ok {
		o.source = src
	}
}

// CompileShader fails sources containing "#error", like a real compiler would.
func (r *Recorder) CompileShader(s glapi.Shader) {
	if !r.record("CompileShader", s) {
		return
	}
	o, ok := r.shaders[s]
	if !ok {
		r.fail(glapi.INVALID_VALUE)
		return
	}
	if i := strings.Index(o.source, "#error"); i >= 0 {
		msg, _, _ := strings.Cut(o.source[i:], "\n")
		o.compiled, o.log = false, "ERROR: 0:1: '"+strings.TrimSpace(msg)+"'\n"
		return
	}
	o.compiled, o.log = true, ""
	o.decls = parseGLSL(o.source)
}

func (r *Recorder) GetShaderi(s glapi.Shader, pname glapi.Enum) int {
	if !r.record("GetShaderi", s, pname) {
		return glapi.FALSE
	}
	if o, ok := r.shaders[s]; ok && pname == glapi.COMPILE_STATUS && o.compiled {
		return glapi.TRUE
	}
	return glapi.FALSE
}

func (r *Recorder) GetShaderInfoLog(s glapi.Shader) string {
	if !r.record("GetShaderInfoLog", s) {
		return ""
	}
	if o, ok := r.shaders[s]; ok {
		return o.log
	}
	return ""
}

func (r *Recorder) DeleteShader(s glapi.Shader) {
	if !r.record("DeleteShader", s) {
		return
	}
	delete(r.shaders, s)
}

func (r *Recorder) CreateProgram() glapi.Program {
	if !r.record("CreateProgram") {
		return 0
	}
	p := glapi.Program(r.handle("program"))
	r.programs[p] = &programObject{values: make(map[glapi.Uniform]any)}
	return p
}

func (r *Recorder) AttachShader(p glapi.Program, s glapi.Shader) {
	if !r.record("AttachShader", p, s) {
		return
	}
	if o, ok := r.programs[p]; ok {
		o.shaders = append(o.shaders, s)
	}
}

// LinkProgram assigns uniform locations in declaration order (arrays take one location per
// element) and attribute locations in declaration order (matrices take one per column).
func (r *Recorder) LinkProgram(p glapi.Program) {
	if !r.record("LinkProgram", p) {
		return
	}
	o, ok := r.programs[p]
	if !ok {
		r.fail(glapi.INVALID_VALUE)
		return
	}
	o.linked, o.uniforms, o.attribs = false, nil, nil
	if r.FailLink {
		o.log = "error: linking is disabled\n"
		return
	}
	var vertex, fragment *shaderObject
	for _, s := range o.shaders {
		so, ok := r.shaders[s]
		if !ok || !so.compiled {
			o.log = "error: attached shader is not compiled\n"
			return
		}
		if so.typ == glapi.VERTEX_SHADER {
			vertex = so
		} else {
			fragment = so
		}
	}
	if vertex == nil || fragment == nil {
		o.log = "error: program needs a vertex and a fragment shader\n"
		return
	}

	seen := make(map[string]bool)
	loc := glapi.Uniform(0)
	for _, so := range []*shaderObject{vertex, fragment} {
		for _, u := range activeUniforms(so.decls.uniforms, so.decls.structs) {
			if seen[u.name] {
				continue
			}
			seen[u.name] = true
			u.location = loc
			loc += glapi.Uniform(u.size)
			o.uniforms = append(o.uniforms, u)
		}
	}
	next := 0
	for _, in := range vertex.decls.inputs {
		typ, ok := glslTypes[in.typ]
		if !ok {
			continue
		}
		o.attribs = append(o.attribs, attribInfo{name: in.name, typ: typ, location: next})
		switch typ {
		case glapi.FLOAT_MAT2:
			next += 2
		case glapi.FLOAT_MAT3:
			next += 3
		case glapi.FLOAT_MAT4:
			next += 4
		default:
			next++
		}
	}
	o.linked, o.log = true, ""
	o.values = make(map[glapi.Uniform]any)
}

func (r *Recorder) GetProgrami(p glapi.Program, pname glapi.Enum) int {
	if !r.record("GetProgrami", p, pname) {
		return 0
	}
	o, ok := r.programs[p]
	if !ok {
		return 0
	}
	switch pname {
	case glapi.LINK_STATUS:
		if o.linked {
			return glapi.TRUE
		}
		return glapi.FALSE
	case glapi.ACTIVE_UNIFORMS:
		return len(o.uniforms)
	case glapi.ACTIVE_ATTRIBUTES:
		return len(o.attribs)
	}
	return 0
}

func (r *Recorder) GetProgramInfoLog(p glapi.Program) string {
	if !r.record("GetProgramInfoLog", p) {
		return ""
	}
	if o, ok := r.programs[p]; ok {
		return o.log
	}
	return ""
}

func (r *Recorder) DeleteProgram(p glapi.Program) {
	if !r.record("DeleteProgram", p) {
		return
	}
	delete(r.programs, p)
	if r.state.Program == p {
		r.state.Program = 0
	}
}

func (r *Recorder) UseProgram(p glapi.Program) {
	if !r.record("UseProgram", p) {
		return
	}
	if o, ok := r.programs[p]; p != 0 && (!ok || !o.linked) {
		r.fail(glapi.INVALID_OPERATION)
		return
	}
	r.state.Program = p
}

func (r *Recorder) GetActiveUniform(p glapi.Program, index int) glapi.ActiveVariable {
	if !r.record("GetActiveUniform", p, index) {
		return glapi.ActiveVariable{}
	}
	o, ok := r.programs[p]
	if !ok || index < 0 || index >= len(o.uniforms) {
		r.fail(glapi.INVALID_VALUE)
		return glapi.ActiveVariable{}
	}
	u := o.uniforms[index]
	return glapi.ActiveVariable{Name: u.name, Size: u.size, Type: u.typ}
}

func (r *Recorder) GetUniformLocation(p glapi.Program, name string) glapi.Uniform {
	if !r.record("GetUniformLocation", p, name) {
		return -1
	}
	if o, ok := r.programs[p]; ok {
		return o.location(name)
	}
	return -1
}

// location resolves "u", "u[0]" and "u[i]" like glGetUniformLocation.
func (o *programObject) location(name string) glapi.Uniform {
	for _, u := range o.uniforms {
		if u.name == name {
			return u.location
		}
		base, isArray := strings.CutSuffix(u.name, "[0]")
		if !isArray {
			continue
		}
		if name == base {
			return u.location
		}
		if idx, ok := strings.CutPrefix(name, base+"["); ok {
			if i, err := strconv.Atoi(strings.TrimSuffix(idx, "]")); err == nil && i >= 0 && i < u.size {
				return u.location + glapi.Uniform(i)
			}
		}
	}
	return -1
}

func (r *Recorder) GetActiveAttrib(p glapi.Program, index int) glapi.ActiveVariable {
	if !r.record("GetActiveAttrib", p, index) {
		return glapi.ActiveVariable{}
	}
	o, ok := r.programs[p]
	if !ok || index < 0 || index >= len(o.attribs) {
		r.fail(glapi.INVALID_VALUE)
		return glapi.ActiveVariable{}
	}
	a := o.attribs[index]
	return glapi.ActiveVariable{Name: a.name, Size: 1, Type: a.typ}
}

func (r *Recorder) GetAttribLocation(p glapi.Program, name string) int {
	if !r.record("GetAttribLocation", p, name) {
		return -1
	}
	if o, ok := r.programs[p]; ok {
		for _, a := range o.attribs {
			if a.name == name {
				return a.location
			}
		}
	}
	return -1
}

func (r *Recorder) setUniform(name string, loc glapi.Uniform, value any) {
	if !r.record(name, loc, value) {
		return
	}
	o, ok := r.programs[r.state.Program]
	if !ok {
		r.fail(glapi.INVALID_OPERATION)
		return
	}
	o.values[loc] = value
}

func (r *Recorder) Uniform1fv(loc glapi.Uniform, v []float32) {
	r.setUniform("Uniform1fv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform2fv(loc glapi.Uniform, v []float32) {
	r.setUniform("Uniform2fv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform3fv(loc glapi.Uniform, v []float32) {
	r.setUniform("Uniform3fv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform4fv(loc glapi.Uniform, v []float32) {
	r.setUniform("Uniform4fv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform1iv(loc glapi.Uniform, v []int32) {
	r.setUniform("Uniform1iv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform2iv(loc glapi.Uniform, v []int32) {
	r.setUniform("Uniform2iv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform3iv(loc glapi.Uniform, v []int32) {
	r.setUniform("Uniform3iv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform4iv(loc glapi.Uniform, v []int32) {
	r.setUniform("Uniform4iv", loc, slices.Clone(v))
}

func (r *Recorder) UniformMatrix2fv(loc glapi.Uniform, v []float32) {
	r.setUniform("UniformMatrix2fv", loc, slices.Clone(v))
}

func (r *Recorder) UniformMatrix3fv(loc glapi.Uniform, v []float32) {
	r.setUniform("UniformMatrix3fv", loc, slices.Clone(v))
}

func (r *Recorder) UniformMatrix4fv(loc glapi.Uniform, v []float32) {
	r.setUniform("UniformMatrix4fv", loc, slices.Clone(v))
}

func (r *Recorder) EnableVertexAttribArray(a glapi.Attrib) {
	if !r.record("EnableVertexAttribArray", a) {
		return
	}
	r.state.EnabledAttribs[a] = true
}

func (r *Recorder) DisableVertexAttribArray(a glapi.Attrib) {
	if !r.record("DisableVertexAttribArray", a) {
		return
	}
	delete(r.state.EnabledAttribs, a)
}

func (r *Recorder) VertexAttribPointer(a glapi.Attrib, size int, typ glapi.Enum, normalized bool, stride, offset int) {
	if !r.record("VertexAttribPointer", a, size, typ, normalized, stride, offset) {
		return
	}
	if r.state.ArrayBuffer == 0 {
		r.fail(glapi.INVALID_OPERATION)
		return
	}
	r.state.AttribPointers[a] = AttribPointer{
		Buffer:     r.state.ArrayBuffer,
		Size:       size,
		Type:       typ,
		Normalized: normalized,
		Stride:     stride,
		Offset:     offset,
	}
}

func (r *Recorder) Enable(capability glapi.Enum) {
	if !r.record("Enable", capability) {
		return
	}
	r.state.Capabilities[capability] = true
}

func (r *Recorder) Disable(capability glapi.Enum) {
	if !r.record("Disable", capability) {
		return
	}
	delete(r.state.Capabilities, capability)
}

func (r *Recorder) BlendFunc(src, dst glapi.Enum) {
	if !r.record("BlendFunc", src, dst) {
		return
	}
	r.state.BlendSrc, r.state.BlendDst = src, dst
}

func (r *Recorder) DepthFunc(fn glapi.Enum) {
	if !r.record("DepthFunc", fn) {
		return
	}
	r.state.DepthFunc = fn
}

func (r *Recorder) CullFace(mode glapi.Enum) {
	if !r.record("CullFace", mode) {
		return
	}
	r.state.CullFace = mode
}

func (r *Recorder) Viewport(x, y, width, height int) {
	if !r.record("Viewport", x, y, width, height) {
		return
	}
	r.state.Viewport = [4]int{x, y, width, height}
}

func (r *Recorder) Scissor(x, y, width, height int) {
	if !r.record("Scissor", x, y, width, height) {
		return
	}
	r.state.Scissor = [4]int{x, y, width, height}
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	if !r.record("ClearColor", red, green, blue, alpha) {
		return
	}
	r.state.ClearColor = [4]float32{red, green, blue, alpha}
}

func (r *Recorder) ClearDepthf(d float32) {
	if !r.record("ClearDepthf", d) {
		return
	}
	r.state.ClearDepth = d
}

func (r *Recorder) Clear(mask glapi.Enum) {
	r.record("Clear", mask)
}

func (r *Recorder) DrawArrays(mode glapi.Enum, first, count int) {
	if !r.record("DrawArrays", mode, first, count) {
		return
	}
	if r.state.Program == 0 {
		r.fail(glapi.INVALID_OPERATION)
	}
}

func (r *Recorder) DrawElements(mode glapi.Enum, count int, typ glapi.Enum, offset int) {
	if !r.record("DrawElements", mode, count, typ, offset) {
		return
	}
	if r.state.Program == 0 || r.state.ElementArrayBuffer == 0 {
		r.fail(glapi.INVALID_OPERATION)
	}
}

func (r *Recorder) GetInteger(pname glapi.Enum) int {
	if !r.record("GetInteger", pname) {
		return 0
	}
	return r.Limits[pname]
}

func (r *Recorder) GetString(pname glapi.Enum) string {
	if !r.record("GetString", pname) {
		return ""
	}
	switch pname {
	case glapi.VENDOR:
		return "glapitest"
	case glapi.RENDERER:
		return "recorder"
	case glapi.VERSION:
		return r.Version
	case glapi.EXTENSIONS:
		return strings.Join(r.Extensions, " ")
	}
	return ""
}

func (r *Recorder) GetError() glapi.Enum {
	if !r.record("GetError") {
		return glapi.CONTEXT_LOST
	}
	if len(r.errors) == 0 {
		return glapi.NO_ERROR
	}
	e := r.errors[0]
	r.errors = r.errors[1:]
	return e
}

// IsContextLost is a host query rather than a GL call and is not recorded.
func (r *Recorder) IsContextLost() bool {
	return r.lost
}
