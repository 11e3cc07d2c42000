package device

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// DeviceBuilderOption is a functional option used to configure a Device during construction.
type DeviceBuilderOption func(*device)

// WithLogger sets the logger of this device, overriding the package logger set with SetLogger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - DeviceBuilderOption: a function that sets the logger of the device
func WithLogger(l *slog.Logger) DeviceBuilderOption {
	return func(d *device) {
		d.log = l
	}
}

// WithDefaultBlendState sets what BlendDefault resolves to. The default is BlendNone.
//
// Parameters:
//   - state: the default blend state
//
// Returns:
//   - DeviceBuilderOption: a function that sets the default blend state of the device
func WithDefaultBlendState(state BlendState) DeviceBuilderOption {
	return func(d *device) {
		if state != BlendDefault {
			d.defaults.blend = state
		}
	}
}

// WithDefaultDepthState sets what DepthDefault resolves to. The default is DepthLess.
//
// Parameters:
//   - state: the default depth state
//
// Returns:
//   - DeviceBuilderOption: a function that sets the default depth state of the device
func WithDefaultDepthState(state DepthState) DeviceBuilderOption {
	return func(d *device) {
		if state != DepthDefault {
			d.defaults.depth = state
		}
	}
}

// WithDefaultCullState sets what CullDefault resolves to. The default is CullBack.
//
// Parameters:
//   - state: the default cull state
//
// Returns:
//   - DeviceBuilderOption: a function that sets the default cull state of the device
func WithDefaultCullState(state CullState) DeviceBuilderOption {
	return func(d *device) {
		if state != CullDefault {
			d.defaults.cull = state
		}
	}
}

// WithDefaultClearColor sets the color used by SetClearColor(nil). The default is opaque black.
//
// Parameters:
//   - color: the default clear color
//
// Returns:
//   - DeviceBuilderOption: a function that sets the default clear color of the device
func WithDefaultClearColor(color common.Color) DeviceBuilderOption {
	return func(d *device) {
		d.defaults.clearColor = color
	}
}

// WithDefaultClearDepth sets the depth used by SetClearDepth(nil). The default is 1.
//
// Parameters:
//   - depth: the default clear depth
//
// Returns:
//   - DeviceBuilderOption: a function that sets the default clear depth of the device
func WithDefaultClearDepth(depth float32) DeviceBuilderOption {
	return func(d *device) {
		d.defaults.clearDepth = depth
	}
}
