package resource

// ShaderType identifies the pipeline stage a shader is compiled for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage.
	ShaderTypeVertex ShaderType = iota
	// ShaderTypeFragment is the fragment stage.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	if t == ShaderTypeVertex {
		return "vertex"
	}
	return "fragment"
}

// shader is the implementation of the Shader interface.
type shader struct {
	base
	shaderType ShaderType
	source     string
}

// Shader is the logical description of one GLSL shader stage.
type Shader interface {
	Resource

	// Type returns the stage the shader is compiled for.
	//
	// Returns:
	//   - ShaderType: vertex or fragment
	Type() ShaderType

	// Source returns the GLSL source text.
	//
	// Returns:
	//   - string: the source text
	Source() string

	// SetSource replaces the source text and raises EventDataChanged so the device recompiles it.
	//
	// Parameters:
	//   - src: the new GLSL source
	SetSource(src string)
}

var _ Shader = &shader{}

// NewShader creates a logical shader. Nothing is compiled until a device first needs it.
//
// Parameters:
//   - name: debug name
//   - typ: the shader stage
//   - source: GLSL source text
//
// Returns:
//   - Shader: the new logical shader
func NewShader(name string, typ ShaderType, source string) Shader {
	s := &shader{base: newBase(KindShader, name), shaderType: typ, source: source}
	s.self = s
	return s
}

func (s *shader) Type() ShaderType {
	return s.shaderType
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) SetSource(src string) {
	s.source = src
	s.notify(EventDataChanged)
}
