// Package glapi defines the stateful, handle-based graphics API the render device sits on.
// It mirrors the subset of OpenGL (ES 3.0 / desktop core 4.1) that the device needs, using
// plain integer handles so that the device can be driven by the real driver (package gogl)
// or by an in-memory recorder in tests (package glapitest).
package glapi

// Enum is a GL enumerant.
type Enum uint32

// Buffer is a GL buffer object name. The zero value means "no buffer".
type Buffer uint32

// Texture is a GL texture object name. The zero value means "no texture".
type Texture uint32

// Framebuffer is a GL framebuffer object name. The zero value is the default framebuffer.
type Framebuffer uint32

// Renderbuffer is a GL renderbuffer object name.
type Renderbuffer uint32

// Shader is a GL shader object name.
type Shader uint32

// Program is a GL program object name. The zero value means "no program".
type Program uint32

// Uniform is a uniform location inside a linked program. -1 is an invalid location.
type Uniform int32

// Attrib is a vertex attribute location.
type Attrib uint32

// ActiveVariable describes one active uniform or attribute reported by a linked program.
type ActiveVariable struct {
	// Name is the name as reported by the driver, e.g. "lights[0].color" or "weights[0]".
	Name string
	// Size is the array size (1 for non-arrays).
	Size int
	// Type is the GL type enum, e.g. FLOAT_VEC3 or SAMPLER_2D.
	Type Enum
}

// Functions is the set of GL entry points used by the render device. Implementations issue
// exactly one driver call per method; all state caching happens in the device.
type Functions interface {
	// Buffers
	CreateBuffer() Buffer
	DeleteBuffer(b Buffer)
	BindBuffer(target Enum, b Buffer)
	BufferData(target Enum, size int, data []byte, usage Enum)
	BufferSubData(target Enum, offset int, data []byte)

	// Textures
	CreateTexture() Texture
	DeleteTexture(t Texture)
	ActiveTexture(unit Enum)
	BindTexture(target Enum, t Texture)
	TexImage2D(target Enum, level int, internalFormat Enum, width, height int, format, typ Enum, data []byte)
	TexParameteri(target, pname Enum, param int)
	GenerateMipmap(target Enum)

	// Framebuffers
	CreateFramebuffer() Framebuffer
	DeleteFramebuffer(fb Framebuffer)
	BindFramebuffer(target Enum, fb Framebuffer)
	FramebufferTexture2D(target, attachment, texTarget Enum, t Texture, level int)
	CheckFramebufferStatus(target Enum) Enum
	DrawBuffers(bufs []Enum)
	CreateRenderbuffer() Renderbuffer
	DeleteRenderbuffer(rb Renderbuffer)
	BindRenderbuffer(target Enum, rb Renderbuffer)
	RenderbufferStorage(target, internalFormat Enum, width, height int)
	FramebufferRenderbuffer(target, attachment, rbTarget Enum, rb Renderbuffer)

	// Shaders and programs
	CreateShader(typ Enum) Shader
	ShaderSource(s Shader, src string)
	CompileShader(s Shader)
	GetShaderi(s Shader, pname Enum) int
	GetShaderInfoLog(s Shader) string
	DeleteShader(s Shader)
	CreateProgram() Program
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	GetProgrami(p Program, pname Enum) int
	GetProgramInfoLog(p Program) string
	DeleteProgram(p Program)
	UseProgram(p Program)
	GetActiveUniform(p Program, index int) ActiveVariable
	GetUniformLocation(p Program, name string) Uniform
	GetActiveAttrib(p Program, index int) ActiveVariable
	GetAttribLocation(p Program, name string) int

	// Uniform uploads
	Uniform1fv(loc Uniform, v []float32)
	Uniform2fv(loc Uniform, v []float32)
	Uniform3fv(loc Uniform, v []float32)
	Uniform4fv(loc Uniform, v []float32)
	Uniform1iv(loc Uniform, v []int32)
	Uniform2iv(loc Uniform, v []int32)
	Uniform3iv(loc Uniform, v []int32)
	Uniform4iv(loc Uniform, v []int32)
	UniformMatrix2fv(loc Uniform, v []float32)
	UniformMatrix3fv(loc Uniform, v []float32)
	UniformMatrix4fv(loc Uniform, v []float32)

	// Vertex attributes
	EnableVertexAttribArray(a Attrib)
	DisableVertexAttribArray(a Attrib)
	VertexAttribPointer(a Attrib, size int, typ Enum, normalized bool, stride, offset int)

	// Fixed function state
	Enable(capability Enum)
	Disable(capability Enum)
	BlendFunc(src, dst Enum)
	DepthFunc(fn Enum)
	CullFace(mode Enum)
	Viewport(x, y, width, height int)
	Scissor(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	ClearDepthf(d float32)
	Clear(mask Enum)

	// Draws
	DrawArrays(mode Enum, first, count int)
	DrawElements(mode Enum, count int, typ Enum, offset int)

	// Queries
	GetInteger(pname Enum) int
	GetString(pname Enum) string
	GetError() Enum
	// IsContextLost reports whether the context backing these functions has been lost.
	// Every other method is a no-op on a lost context.
	IsContextLost() bool
}
