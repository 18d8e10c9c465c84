package gpu

import "github.com/rs/zerolog"

// BackendBuilderOption is a functional option applied to the backend during construction via NewBackend.
type BackendBuilderOption func(*wgpuBackend)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - BackendBuilderOption: a function that applies the present mode option to a backend
func WithPresentMode(mode PresentMode) BackendBuilderOption {
	return func(b *wgpuBackend) {
		b.SetPresentMode(mode)
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - BackendBuilderOption: a function that applies the force software renderer option to a backend
func WithForceSoftwareRenderer(force bool) BackendBuilderOption {
	return func(b *wgpuBackend) {
		b.forceFallbackAdapter = force
	}
}

// WithDeviceLabel sets the debug label of the logical device.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - BackendBuilderOption: a function that applies the label to a backend
func WithDeviceLabel(label string) BackendBuilderOption {
	return func(b *wgpuBackend) {
		b.deviceLabel = label
	}
}

// WithLogger sets the logger used for backend lifecycle messages.
//
// Parameters:
//   - logger: the zerolog logger to use
//
// Returns:
//   - BackendBuilderOption: a function that applies the logger to a backend
func WithLogger(logger zerolog.Logger) BackendBuilderOption {
	return func(b *wgpuBackend) {
		b.logger = logger
	}
}
