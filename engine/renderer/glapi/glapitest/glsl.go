package glapitest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
)

// declaration is one global GLSL variable declaration.
type declaration struct {
	typ   string
	name  string
	array int
}

// interfaceDecls are the global declarations of one shader that a linker would see.
type interfaceDecls struct {
	structs  map[string][]declaration
	uniforms []declaration
	inputs   []declaration
}

var (
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	directive    = regexp.MustCompile(`(?m)^\s*#.*$`)
	layout       = regexp.MustCompile(`layout\s*\([^)]*\)`)
	structDecl   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}\s*;?`)
)

var qualifiers = map[string]bool{
	"highp": true, "mediump": true, "lowp": true,
	"flat": true, "smooth": true, "noperspective": true, "centroid": true,
	"const": true, "invariant": true,
}

var glslTypes = map[string]glapi.Enum{
	"float":       glapi.FLOAT,
	"vec2":        glapi.FLOAT_VEC2,
	"vec3":        glapi.FLOAT_VEC3,
	"vec4":        glapi.FLOAT_VEC4,
	"int":         glapi.INT,
	"ivec2":       glapi.INT_VEC2,
	"ivec3":       glapi.INT_VEC3,
	"ivec4":       glapi.INT_VEC4,
	"bool":        glapi.BOOL,
	"bvec2":       glapi.BOOL_VEC2,
	"bvec3":       glapi.BOOL_VEC3,
	"bvec4":       glapi.BOOL_VEC4,
	"mat2":        glapi.FLOAT_MAT2,
	"mat3":        glapi.FLOAT_MAT3,
	"mat4":        glapi.FLOAT_MAT4,
	"sampler2D":   glapi.SAMPLER_2D,
	"samplerCube": glapi.SAMPLER_CUBE,
}

// parseGLSL extracts struct types, uniforms and stage inputs ("in" or "attribute") from GLSL
// source. It understands global declarations only; function bodies are skipped.
func parseGLSL(src string) interfaceDecls {
	src = blockComment.ReplaceAllString(src, "")
	src = lineComment.ReplaceAllString(src, "")
	src = directive.ReplaceAllString(src, "")
	src = layout.ReplaceAllString(src, "")

	decls := interfaceDecls{structs: make(map[string][]declaration)}
	for _, m := range structDecl.FindAllStringSubmatch(src, -1) {
		var fields []declaration
		for _, stmt := range strings.Split(m[2], ";") {
			tokens := strings.Fields(stmt)
			if len(tokens) >= 2 {
				fields = append(fields, declarators(tokens)...)
			}
		}
		decls.structs[m[1]] = fields
	}
	src = structDecl.ReplaceAllString(src, ";")
	src = stripBlocks(src)

	for _, stmt := range strings.Split(src, ";") {
		tokens := strings.Fields(stmt)
		if len(tokens) < 3 {
			continue
		}
		switch tokens[0] {
		case "uniform":
			decls.uniforms = append(decls.uniforms, declarators(tokens[1:])...)
		case "in", "attribute":
			decls.inputs = append(decls.inputs, declarators(tokens[1:])...)
		}
	}
	return decls
}

// declarators parses "type a, b[4]" (qualifiers allowed before the type).
func declarators(tokens []string) []declaration {
	for len(tokens) > 0 && qualifiers[tokens[0]] {
		tokens = tokens[1:]
	}
	if len(tokens) < 2 {
		return nil
	}
	typ := tokens[0]
	var out []declaration
	for _, name := range strings.Split(strings.Join(tokens[1:], ""), ",") {
		if name == "" {
			continue
		}
		d := declaration{typ: typ, name: name}
		if open := strings.IndexByte(name, '['); open >= 0 {
			d.name = name[:open]
			d.array, _ = strconv.Atoi(strings.TrimSuffix(name[open+1:], "]"))
		}
		out = append(out, d)
	}
	return out
}

// stripBlocks replaces every top-level {...} block with a statement separator.
func stripBlocks(src string) string {
	var b strings.Builder
	depth := 0
	for _, r := range src {
		switch {
		case r == '{':
			depth++
		case r == '}':
			depth--
			if depth == 0 {
				b.WriteRune(';')
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// activeUniforms expands declarations the way a GL linker reports them: struct members one by one
// ("s.f", "a[1].f") and arrays of basic types once as "name[0]" with their size.
func activeUniforms(decls []declaration, structs map[string][]declaration) []uniformInfo {
	var out []uniformInfo
	var expand func(prefix string, d declaration)
	expand = func(prefix string, d declaration) {
		if fields, ok := structs[d.typ]; ok {
			if d.array > 0 {
				for i := 0; i < d.array; i++ {
					for _, f := range fields {
						expand(prefix+d.name+"["+strconv.Itoa(i)+"].", f)
					}
				}
				return
			}
			for _, f := range fields {
				expand(prefix+d.name+".", f)
			}
			return
		}
		typ, ok := glslTypes[d.typ]
		if !ok {
			return
		}
		if d.array > 0 {
			out = append(out, uniformInfo{name: prefix + d.name + "[0]", typ: typ, size: d.array})
			return
		}
		out = append(out, uniformInfo{name: prefix + d.name, typ: typ, size: 1})
	}
	for _, d := range decls {
		expand("", d)
	}
	return out
}
