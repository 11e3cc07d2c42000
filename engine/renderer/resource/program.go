package resource

// program is the implementation of the Program interface.
type program struct {
	base
	vertex, fragment Shader
}

// Program is the logical description of a linked vertex + fragment shader pair.
type Program interface {
	Resource

	// VertexShader returns the vertex stage.
	//
	// Returns:
	//   - Shader: the vertex shader
	VertexShader() Shader

	// FragmentShader returns the fragment stage.
	//
	// Returns:
	//   - Shader: the fragment shader
	FragmentShader() Shader
}

var _ Program = &program{}

// NewProgram creates a logical program from two shaders. The device links it (and compiles the
// shaders) lazily on first use.
//
// Parameters:
//   - name: debug name
//   - vertex: the vertex shader
//   - fragment: the fragment shader
//
// Returns:
//   - Program: the new logical program
func NewProgram(name string, vertex, fragment Shader) Program {
	p := &program{base: newBase(KindProgram, name), vertex: vertex, fragment: fragment}
	p.self = p
	return p
}

func (p *program) VertexShader() Shader {
	return p.vertex
}

func (p *program) FragmentShader() Shader {
	return p.fragment
}
