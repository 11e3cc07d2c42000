package device

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"

// Topology is the primitive assembly mode used by draws.
type Topology int

const (
	TopologyTriangles Topology = iota
	TopologyTriangleStrip
	TopologyTriangleFan
	TopologyLines
	TopologyLineStrip
	TopologyLineLoop
	TopologyPoints
)

func (t Topology) mode() glapi.Enum {
	switch t {
	case TopologyTriangleStrip:
		return glapi.TRIANGLE_STRIP
	case TopologyTriangleFan:
		return glapi.TRIANGLE_FAN
	case TopologyLines:
		return glapi.LINES
	case TopologyLineStrip:
		return glapi.LINE_STRIP
	case TopologyLineLoop:
		return glapi.LINE_LOOP
	case TopologyPoints:
		return glapi.POINTS
	}
	return glapi.TRIANGLES
}

// BlendState selects how fragment colors combine with the render target.
// BlendDefault resolves to the device default (BlendNone unless configured otherwise).
type BlendState int

const (
	BlendDefault BlendState = iota
	// BlendNone disables blending.
	BlendNone
	// BlendNormal is straight alpha blending.
	BlendNormal
	// BlendPremultiplied is alpha blending of premultiplied colors.
	BlendPremultiplied
	// BlendAdditive adds alpha-weighted source to destination.
	BlendAdditive
	// BlendMultiply multiplies source and destination.
	BlendMultiply
)

func (b BlendState) factors() (src, dst glapi.Enum) {
	switch b {
	case BlendPremultiplied:
		return glapi.ONE, glapi.ONE_MINUS_SRC_ALPHA
	case BlendAdditive:
		return glapi.SRC_ALPHA, glapi.ONE
	case BlendMultiply:
		return glapi.DST_COLOR, glapi.ZERO
	}
	return glapi.SRC_ALPHA, glapi.ONE_MINUS_SRC_ALPHA
}

// DepthState selects the depth comparison. DepthDefault resolves to the device default
// (DepthLess unless configured otherwise).
type DepthState int

const (
	DepthDefault DepthState = iota
	// DepthNone disables the depth test.
	DepthNone
	DepthNever
	DepthLess
	DepthEqual
	DepthLessEqual
	DepthGreater
	DepthNotEqual
	DepthGreaterEqual
	DepthAlways
)

func (d DepthState) function() glapi.Enum {
	switch d {
	case DepthNever:
		return glapi.NEVER
	case DepthEqual:
		return glapi.EQUAL
	case DepthLessEqual:
		return glapi.LEQUAL
	case DepthGreater:
		return glapi.GREATER
	case DepthNotEqual:
		return glapi.NOTEQUAL
	case DepthGreaterEqual:
		return glapi.GEQUAL
	case DepthAlways:
		return glapi.ALWAYS
	}
	return glapi.LESS
}

// CullState selects which faces are discarded. CullDefault resolves to the device default
// (CullBack unless configured otherwise).
type CullState int

const (
	CullDefault CullState = iota
	// CullNone disables face culling.
	CullNone
	CullBack
	CullFront
	CullFrontAndBack
)

func (c CullState) face() glapi.Enum {
	switch c {
	case CullFront:
		return glapi.FRONT
	case CullFrontAndBack:
		return glapi.FRONT_AND_BACK
	}
	return glapi.BACK
}
