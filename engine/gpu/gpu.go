// Package gpu is the boundary between the conductor and the GPU. Programs see a read-only
// Context; the conductor drives frames through a Presenter. The wgpu-backed Backend implements
// both on top of cogentcore/webgpu.
package gpu

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrFrameUnavailable is returned when the presentation surface cannot provide a frame,
	// e.g. because the window is minimized or the device was lost.
	ErrFrameUnavailable = errors.New("gpu: surface frame unavailable")

	// ErrSetup is returned when instance, adapter, device or surface creation fails.
	ErrSetup = errors.New("gpu: setup failed")

	// ErrForeignResource is returned when a command buffer or frame created by a different
	// Presenter implementation is handed back to this one.
	ErrForeignResource = errors.New("gpu: resource does not belong to this backend")
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

// RenderPass is the draw-recording surface handed to a program's Render call. The pass has
// already been begun against the program's target with its clear policy; programs record
// commands into it and must not keep it after Render returns.
type RenderPass interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64)
	SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

// RenderPassEncoder is a RenderPass that its owner can end. Only the conductor ends passes.
type RenderPassEncoder interface {
	RenderPass

	// End finishes recording into the pass.
	End()
}

// CommandBuffer is a finished, submittable batch of GPU commands.
type CommandBuffer interface {
	Release()
}

// CommandEncoder records render passes for one frame.
type CommandEncoder interface {
	// BeginRenderPass starts a single-color-attachment pass against view.
	//
	// Parameters:
	//   - view: the texture view to render into
	//   - load: whether to clear the attachment (and to which color) or keep its contents
	//
	// Returns:
	//   - RenderPassEncoder: the begun pass
	BeginRenderPass(view *wgpu.TextureView, load LoadOp) RenderPassEncoder

	// Finish closes the encoder and produces the command buffer to submit.
	//
	// Returns:
	//   - CommandBuffer: the recorded commands
	//   - error: an error if the encoder could not be finished
	Finish() (CommandBuffer, error)

	// Release frees the encoder. Safe to call after Finish.
	Release()
}

// Frame is a presentation-surface image acquired for the current tick.
type Frame interface {
	// View returns the render-attachment view of the acquired surface image.
	View() *wgpu.TextureView

	// Release drops the frame without presenting it.
	Release()
}

// Context is the read-only GPU access lent to program callbacks.
type Context interface {
	// Device returns the logical device used to create pipelines, buffers and textures.
	Device() *wgpu.Device

	// Queue returns the device queue for buffer and texture uploads.
	Queue() *wgpu.Queue

	// SurfaceFormat returns the texture format of the presentation surface.
	SurfaceFormat() wgpu.TextureFormat

	// Size returns the configured surface size in pixels.
	Size() (width, height int)

	// CreateOffscreenTexture allocates a render-attachment texture a program can target
	// instead of the shared surface. The caller owns the result and must release it.
	//
	// Parameters:
	//   - label: debug label for the texture
	//   - width: texture width in pixels
	//   - height: texture height in pixels
	//
	// Returns:
	//   - *OffscreenTexture: the texture and its view
	//   - error: an error if the texture could not be created
	CreateOffscreenTexture(label string, width, height int) (*OffscreenTexture, error)
}

// Presenter is the frame-level GPU surface used by the conductor: exactly one acquire, one
// encoder, one submit and one present per tick.
type Presenter interface {
	// AcquireFrame acquires the current presentation-surface image.
	//
	// Returns:
	//   - Frame: the acquired frame
	//   - error: an error wrapping ErrFrameUnavailable if no frame could be acquired
	AcquireFrame() (Frame, error)

	// CreateCommandEncoder creates the encoder for one frame.
	//
	// Returns:
	//   - CommandEncoder: the new encoder
	//   - error: an error if the encoder could not be created
	CreateCommandEncoder() (CommandEncoder, error)

	// Submit submits a finished command buffer to the device queue and releases it.
	//
	// Parameters:
	//   - buffer: the command buffer to submit
	//
	// Returns:
	//   - error: ErrForeignResource if buffer was not produced by this presenter
	Submit(buffer CommandBuffer) error

	// Present presents an acquired frame and releases it.
	//
	// Parameters:
	//   - frame: the frame to present
	Present(frame Frame)
}

// Backend owns the device and surface for the lifetime of the application.
type Backend interface {
	Context
	Presenter

	// Resize reconfigures the surface for a new framebuffer size. A zero dimension leaves the
	// surface unconfigured until the next non-zero resize.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if the surface could not be configured
	Resize(width, height int) error

	// SetPresentMode changes the present mode. Takes effect at the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Release frees the surface, device, adapter and instance.
	Release()
}
