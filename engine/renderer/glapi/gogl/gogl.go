// Package gogl implements glapi.Functions on top of the go-gl OpenGL 4.1 core bindings.
//
// go-gl: https://pkg.go.dev/github.com/go-gl/gl/v4.1-core/gl
package gogl

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// numExtensions is GL_NUM_EXTENSIONS, the core-profile replacement for the EXTENSIONS string.
const numExtensions = 0x821D

// Functions calls straight into the current OpenGL context. It must be created and used on
// the goroutine (locked OS thread) that owns the context.
type Functions struct {
	// vertexArray is bound for the lifetime of the context; the core profile refuses
	// attribute setup without a bound vertex array object.
	vertexArray uint32
	lost        atomic.Bool
}

var _ glapi.Functions = &Functions{}

// New loads the GL entry points for the context current on the calling thread and binds a
// vertex array object for the device to use.
//
// Returns:
//   - *Functions: the GL function table for the current context
//   - error: an error if the entry points could not be loaded
func New() (*Functions, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL bindings: %w", err)
	}
	f := &Functions{}
	gl.GenVertexArrays(1, &f.vertexArray)
	gl.BindVertexArray(f.vertexArray)
	return f, nil
}

// Invalidate marks the context as lost. The host calls this once the context behind these
// functions is gone (window or context destroyed, driver reset); every call after that is a no-op.
func (f *Functions) Invalidate() {
	f.lost.Store(true)
}

func (f *Functions) IsContextLost() bool {
	return f.lost.Load()
}

func (f *Functions) dead() bool {
	return f.lost.Load()
}

func (f *Functions) CreateBuffer() glapi.Buffer {
	if f.dead() {
		return 0
	}
	var b uint32
	gl.GenBuffers(1, &b)
	return glapi.Buffer(b)
}

func (f *Functions) DeleteBuffer(b glapi.Buffer) {
	if f.dead() {
		return
	}
	h := uint32(b)
	gl.DeleteBuffers(1, &h)
}

func (f *Functions) BindBuffer(target glapi.Enum, b glapi.Buffer) {
	if f.dead() {
		return
	}
	gl.BindBuffer(uint32(target), uint32(b))
}

func (f *Functions) BufferData(target glapi.Enum, size int, data []byte, usage glapi.Enum) {
	if f.dead() {
		return
	}
	if len(data) == 0 {
		gl.BufferData(uint32(target), size, nil, uint32(usage))
		return
	}
	gl.BufferData(uint32(target), size, gl.Ptr(data), uint32(usage))
}

func (f *Functions) BufferSubData(target glapi.Enum, offset int, data []byte) {
	if f.dead() || len(data) == 0 {
		return
	}
	gl.BufferSubData(uint32(target), offset, len(data), gl.Ptr(data))
}

func (f *Functions) CreateTexture() glapi.Texture {
	if f.dead() {
		return 0
	}
	var t uint32
	gl.GenTextures(1, &t)
	return glapi.Texture(t)
}

func (f *Functions) DeleteTexture(t glapi.Texture) {
	if f.dead() {
		return
	}
	h := uint32(t)
	gl.DeleteTextures(1, &h)
}

func (f *Functions) ActiveTexture(unit glapi.Enum) {
	if f.dead() {
		return
	}
	gl.ActiveTexture(uint32(unit))
}

func (f *Functions) BindTexture(target glapi.Enum, t glapi.Texture) {
	if f.dead() {
		return
	}
	gl.BindTexture(uint32(target), uint32(t))
}

func (f *Functions) TexImage2D(target glapi.Enum, level int, internalFormat glapi.Enum, width, height int, format, typ glapi.Enum, data []byte) {
	if f.dead() {
		return
	}
	if len(data) == 0 {
		gl.TexImage2D(uint32(target), int32(level), int32(internalFormat), int32(width), int32(height), 0, uint32(format), uint32(typ), nil)
		return
	}
	gl.TexImage2D(uint32(target), int32(level), int32(internalFormat), int32(width), int32(height), 0, uint32(format), uint32(typ), gl.Ptr(data))
}

func (f *Functions) TexParameteri(target, pname glapi.Enum, param int) {
	if f.dead() {
		return
	}
	gl.TexParameteri(uint32(target), uint32(pname), int32(param))
}

func (f *Functions) GenerateMipmap(target glapi.Enum) {
	if f.dead() {
		return
	}
	gl.GenerateMipmap(uint32(target))
}

func (f *Functions) CreateFramebuffer() glapi.Framebuffer {
	if f.dead() {
		return 0
	}
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	return glapi.Framebuffer(fb)
}

func (f *Functions) DeleteFramebuffer(fb glapi.Framebuffer) {
	if f.dead() {
		return
	}
	h := uint32(fb)
	gl.DeleteFramebuffers(1, &h)
}

func (f *Functions) BindFramebuffer(target glapi.Enum, fb glapi.Framebuffer) {
	if f.dead() {
		return
	}
	gl.BindFramebuffer(uint32(target), uint32(fb))
}

func (f *Functions) FramebufferTexture2D(target, attachment, texTarget glapi.Enum, t glapi.Texture, level int) {
	if f.dead() {
		return
	}
	gl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(texTarget), uint32(t), int32(level))
}

func (f *Functions) CheckFramebufferStatus(target glapi.Enum) glapi.Enum {
	if f.dead() {
		return glapi.NONE
	}
	return glapi.Enum(gl.CheckFramebufferStatus(uint32(target)))
}

func (f *Functions) DrawBuffers(bufs []glapi.Enum) {
	if f.dead() || len(bufs) == 0 {
		return
	}
	raw := make([]uint32, len(bufs))
	for i, b := range bufs {
		raw[i] = uint32(b)
	}
	gl.DrawBuffers(int32(len(raw)), &raw[0])
}

func (f *Functions) CreateRenderbuffer() glapi.Renderbuffer {
	if f.dead() {
		return 0
	}
	var rb uint32
	gl.GenRenderbuffers(1, &rb)
	return glapi.Renderbuffer(rb)
}

func (f *Functions) DeleteRenderbuffer(rb glapi.Renderbuffer) {
	if f.dead() {
		return
	}
	h := uint32(rb)
	gl.DeleteRenderbuffers(1, &h)
}

func (f *Functions) BindRenderbuffer(target glapi.Enum, rb glapi.Renderbuffer) {
	if f.dead() {
		return
	}
	gl.BindRenderbuffer(uint32(target), uint32(rb))
}

func (f *Functions) RenderbufferStorage(target, internalFormat glapi.Enum, width, height int) {
	if f.dead() {
		return
	}
	gl.RenderbufferStorage(uint32(target), uint32(internalFormat), int32(width), int32(height))
}

func (f *Functions) FramebufferRenderbuffer(target, attachment, rbTarget glapi.Enum, rb glapi.Renderbuffer) {
	if f.dead() {
		return
	}
	gl.FramebufferRenderbuffer(uint32(target), uint32(attachment), uint32(rbTarget), uint32(rb))
}

func (f *Functions) CreateShader(typ glapi.Enum) glapi.Shader {
	if f.dead() {
		return 0
	}
	return glapi.Shader(gl.CreateShader(uint32(typ)))
}

func (f *Functions) ShaderSource(s glapi.Shader, src string) {
	if f.dead() {
		return
	}
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(uint32(s), 1, csources, nil)
	free()
}

func (f *Functions) CompileShader(s glapi.Shader) {
	if f.dead() {
		return
	}
	gl.CompileShader(uint32(s))
}

func (f *Functions) GetShaderi(s glapi.Shader, pname glapi.Enum) int {
	if f.dead() {
		return 0
	}
	var v int32
	gl.GetShaderiv(uint32(s), uint32(pname), &v)
	return int(v)
}

func (f *Functions) GetShaderInfoLog(s glapi.Shader) string {
	if f.dead() {
		return ""
	}
	var n int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	msg := strings.Repeat("\x00", int(n+1))
	gl.GetShaderInfoLog(uint32(s), n, nil, gl.Str(msg))
	return strings.TrimRight(msg, "\x00")
}

func (f *Functions) DeleteShader(s glapi.Shader) {
	if f.dead() {
		return
	}
	gl.DeleteShader(uint32(s))
}

func (f *Functions) CreateProgram() glapi.Program {
	if f.dead() {
		return 0
	}
	return glapi.Program(gl.CreateProgram())
}

func (f *Functions) AttachShader(p glapi.Program, s glapi.Shader) {
	if f.dead() {
		return
	}
	gl.AttachShader(uint32(p), uint32(s))
}

func (f *Functions) LinkProgram(p glapi.Program) {
	if f.dead() {
		return
	}
	gl.LinkProgram(uint32(p))
}

func (f *Functions) GetProgrami(p glapi.Program, pname glapi.Enum) int {
	if f.dead() {
		return 0
	}
	var v int32
	gl.GetProgramiv(uint32(p), uint32(pname), &v)
	return int(v)
}

func (f *Functions) GetProgramInfoLog(p glapi.Program) string {
	if f.dead() {
		return ""
	}
	var n int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	msg := strings.Repeat("\x00", int(n+1))
	gl.GetProgramInfoLog(uint32(p), n, nil, gl.Str(msg))
	return strings.TrimRight(msg, "\x00")
}

func (f *Functions) DeleteProgram(p glapi.Program) {
	if f.dead() {
		return
	}
	gl.DeleteProgram(uint32(p))
}

func (f *Functions) UseProgram(p glapi.Program) {
	if f.dead() {
		return
	}
	gl.UseProgram(uint32(p))
}

func (f *Functions) GetActiveUniform(p glapi.Program, index int) glapi.ActiveVariable {
	if f.dead() {
		return glapi.ActiveVariable{}
	}
	return f.activeVariable(p, index, gl.ACTIVE_UNIFORM_MAX_LENGTH, gl.GetActiveUniform)
}

func (f *Functions) GetActiveAttrib(p glapi.Program, index int) glapi.ActiveVariable {
	if f.dead() {
		return glapi.ActiveVariable{}
	}
	return f.activeVariable(p, index, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, gl.GetActiveAttrib)
}

func (f *Functions) activeVariable(p glapi.Program, index int, maxLenParam uint32, query func(uint32, uint32, int32, *int32, *int32, *uint32, *uint8)) glapi.ActiveVariable {
	var maxLen int32
	gl.GetProgramiv(uint32(p), maxLenParam, &maxLen)
	if maxLen <= 0 {
		maxLen = 256
	}
	buf := make([]uint8, maxLen+1)
	var length, size int32
	var typ uint32
	query(uint32(p), uint32(index), maxLen, &length, &size, &typ, &buf[0])
	return glapi.ActiveVariable{
		Name: string(buf[:length]),
		Size: int(size),
		Type: glapi.Enum(typ),
	}
}

func (f *Functions) GetUniformLocation(p glapi.Program, name string) glapi.Uniform {
	if f.dead() {
		return -1
	}
	return glapi.Uniform(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (f *Functions) GetAttribLocation(p glapi.Program, name string) int {
	if f.dead() {
		return -1
	}
	return int(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

func (f *Functions) Uniform1fv(loc glapi.Uniform, v []float32) {
	if f.dead() || len(v) == 0 {
		return
	}
	gl.Uniform1fv(int32(loc), int32(len(v)), &v[0])
}

func (f *Functions) Uniform2fv(loc glapi.Uniform, v []float32) {
	if f.dead() || len(v) < 2 {
		return
	}
	gl.Uniform2fv(int32(loc), int32(len(v)/2), &v[0])
}

func (f *Functions) Uniform3fv(loc glapi.Uniform, v []float32) {
	if f.dead() || len(v) < 3 {
		return
	}
	gl.Uniform3fv(int32(loc), int32(len(v)/3), &v[0])
}

func (f *Functions) Uniform4fv(loc glapi.Uniform, v []float32) {
	if f.dead() || len(v) < 4 {
		return
	}
	gl.Uniform4fv(int32(loc), int32(len(v)/4), &v[0])
}

func (f *Functions) Uniform1iv(loc glapi.Uniform, v []int32) {
	if f.dead() || len(v) == 0 {
		return
	}
	gl.Uniform1iv(int32(loc), int32(len(v)), &v[0])
}

func (f *Functions) Uniform2iv(loc glapi.Uniform, v []int32) {
	if f.dead() || len(v) < 2 {
		return
	}
	gl.Uniform2iv(int32(loc), int32(len(v)/2), &v[0])
}

func (f *Functions) Uniform3iv(loc glapi.Uniform, v []int32) {
	if f.dead() || len(v) < 3 {
		return
	}
	gl.Uniform3iv(int32(loc), int32(len(v)/3), &v[0])
}

func (f *Functions) Uniform4iv(loc glapi.Uniform, v []int32) {
	if f.dead() || len(v) < 4 {
		return
	}
	gl.Uniform4iv(int32(loc), int32(len(v)/4), &v[0])
}

func (f *Functions) UniformMatrix2fv(loc glapi.Uniform, v []float32) {
	if f.dead() || len(v) < 4 {
		return
	}
	gl.UniformMatrix2fv(int32(loc), int32(len(v)/4), false, &v[0])
}

func (f *Functions) UniformMatrix3fv(loc glapi.Uniform, v []float32) {
	if f.dead() || len(v) < 9 {
		return
	}
	gl.UniformMatrix3fv(int32(loc), int32(len(v)/9), false, &v[0])
}

func (f *Functions) UniformMatrix4fv(loc glapi.Uniform, v []float32) {
	if f.dead() || len(v) < 16 {
		return
	}
	gl.UniformMatrix4fv(int32(loc), int32(len(v)/16), false, &v[0])
}

func (f *Functions) EnableVertexAttribArray(a glapi.Attrib) {
	if f.dead() {
		return
	}
	gl.EnableVertexAttribArray(uint32(a))
}

func (f *Functions) DisableVertexAttribArray(a glapi.Attrib) {
	if f.dead() {
		return
	}
	gl.DisableVertexAttribArray(uint32(a))
}

func (f *Functions) VertexAttribPointer(a glapi.Attrib, size int, typ glapi.Enum, normalized bool, stride, offset int) {
	if f.dead() {
		return
	}
	gl.VertexAttribPointer(uint32(a), int32(size), uint32(typ), normalized, int32(stride), gl.PtrOffset(offset))
}

func (f *Functions) Enable(capability glapi.Enum) {
	if f.dead() {
		return
	}
	gl.Enable(uint32(capability))
}

func (f *Functions) Disable(capability glapi.Enum) {
	if f.dead() {
		return
	}
	gl.Disable(uint32(capability))
}

func (f *Functions) BlendFunc(src, dst glapi.Enum) {
	if f.dead() {
		return
	}
	gl.BlendFunc(uint32(src), uint32(dst))
}

func (f *Functions) DepthFunc(fn glapi.Enum) {
	if f.dead() {
		return
	}
	gl.DepthFunc(uint32(fn))
}

func (f *Functions) CullFace(mode glapi.Enum) {
	if f.dead() {
		return
	}
	gl.CullFace(uint32(mode))
}

func (f *Functions) Viewport(x, y, width, height int) {
	if f.dead() {
		return
	}
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (f *Functions) Scissor(x, y, width, height int) {
	if f.dead() {
		return
	}
	gl.Scissor(int32(x), int32(y), int32(width), int32(height))
}

func (f *Functions) ClearColor(r, g, b, a float32) {
	if f.dead() {
		return
	}
	gl.ClearColor(r, g, b, a)
}

func (f *Functions) ClearDepthf(d float32) {
	if f.dead() {
		return
	}
	gl.ClearDepthf(d)
}

func (f *Functions) Clear(mask glapi.Enum) {
	if f.dead() {
		return
	}
	gl.Clear(uint32(mask))
}

func (f *Functions) DrawArrays(mode glapi.Enum, first, count int) {
	if f.dead() {
		return
	}
	gl.DrawArrays(uint32(mode), int32(first), int32(count))
}

func (f *Functions) DrawElements(mode glapi.Enum, count int, typ glapi.Enum, offset int) {
	if f.dead() {
		return
	}
	gl.DrawElements(uint32(mode), int32(count), uint32(typ), gl.PtrOffset(offset))
}

func (f *Functions) GetInteger(pname glapi.Enum) int {
	if f.dead() {
		return 0
	}
	var v int32
	gl.GetIntegerv(uint32(pname), &v)
	return int(v)
}

// GetString returns the driver string for pname. EXTENSIONS is assembled from the indexed
// core-profile query and returned space separated.
func (f *Functions) GetString(pname glapi.Enum) string {
	if f.dead() {
		return ""
	}
	if pname == glapi.EXTENSIONS {
		var n int32
		gl.GetIntegerv(numExtensions, &n)
		exts := make([]string, 0, n)
		for i := int32(0); i < n; i++ {
			exts = append(exts, gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))))
		}
		return strings.Join(exts, " ")
	}
	return gl.GoStr(gl.GetString(uint32(pname)))
}

func (f *Functions) GetError() glapi.Enum {
	if f.dead() {
		return glapi.CONTEXT_LOST
	}
	return glapi.Enum(gl.GetError())
}
