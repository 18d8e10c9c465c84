package gpu

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// wgpuBackend implements Backend on top of cogentcore/webgpu.
// All methods must be called from the thread that runs the event loop.
type wgpuBackend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	width         int
	height        int
	configured    bool

	// set by options before the adapter is requested
	forceFallbackAdapter bool
	deviceLabel          string
	logger               zerolog.Logger
}

var _ Backend = &wgpuBackend{}

// NewBackend creates the WebGPU instance, surface, adapter, device and queue, then configures
// the surface for the initial framebuffer size.
//
// Parameters:
//   - surfaceDescriptor: native window handle description, from Window.SurfaceDescriptor
//   - width: the initial framebuffer width in pixels
//   - height: the initial framebuffer height in pixels
//   - options: variadic list of BackendBuilderOption functions to configure the backend
//
// Returns:
//   - Backend: the configured backend
//   - error: an error wrapping ErrSetup if any GPU object could not be created
func NewBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...BackendBuilderOption) (Backend, error) {
	if surfaceDescriptor == nil {
		return nil, fmt.Errorf("%w: nil surface descriptor", ErrSetup)
	}
	runtime.LockOSThread()

	b := &wgpuBackend{
		presentMode: wgpu.PresentModeFifo,
		deviceLabel: "Conductor Device",
		logger:      log.Logger,
	}

	for _, opt := range options {
		opt(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("%w: request adapter: %w", ErrSetup, err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: b.deviceLabel,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("%w: request device: %w", ErrSetup, err)
	}
	b.device = d
	b.queue = d.GetQueue()

	if err := b.Resize(width, height); err != nil {
		b.Release()
		return nil, err
	}

	b.logger.Info().
		Int("width", width).
		Int("height", height).
		Bool("fallback_adapter", b.forceFallbackAdapter).
		Msg("gpu backend ready")
	return b, nil
}

func (b *wgpuBackend) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuBackend) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuBackend) SurfaceFormat() wgpu.TextureFormat {
	return b.surfaceFormat
}

func (b *wgpuBackend) Size() (int, int) {
	return b.width, b.height
}

func (b *wgpuBackend) Resize(width, height int) error {
	b.width, b.height = width, height
	if width <= 0 || height <= 0 {
		// Minimized: keep the previous configuration until a real size arrives.
		return nil
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return fmt.Errorf("%w: surface reports no supported formats", ErrSetup)
	}
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.configured = true
	return nil
}

func (b *wgpuBackend) SetPresentMode(mode PresentMode) {
	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuBackend) CreateOffscreenTexture(label string, width, height int) (*OffscreenTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("offscreen texture %q: invalid size %dx%d", label, width, height)
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        b.surfaceFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create offscreen texture %q: %w", label, err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create offscreen texture view %q: %w", label, err)
	}

	return &OffscreenTexture{
		Texture: tex,
		View:    view,
		Format:  b.surfaceFormat,
		Width:   uint32(width),
		Height:  uint32(height),
	}, nil
}

func (b *wgpuBackend) AcquireFrame() (Frame, error) {
	if !b.configured {
		return nil, fmt.Errorf("%w: surface not configured", ErrFrameUnavailable)
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrameUnavailable, err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, fmt.Errorf("%w: create view: %w", ErrFrameUnavailable, err)
	}

	return &wgpuFrame{texture: surfaceTexture, view: view}, nil
}

func (b *wgpuBackend) CreateCommandEncoder() (CommandEncoder, error) {
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	return &wgpuCommandEncoder{encoder: encoder}, nil
}

func (b *wgpuBackend) Submit(buffer CommandBuffer) error {
	cb, ok := buffer.(*wgpuCommandBuffer)
	if !ok {
		return ErrForeignResource
	}
	b.queue.Submit(cb.buffer)
	cb.Release()
	return nil
}

func (b *wgpuBackend) Present(frame Frame) {
	if _, ok := frame.(*wgpuFrame); !ok {
		b.logger.Warn().Err(ErrForeignResource).Msg("present skipped")
		return
	}
	b.surface.Present()
	frame.Release()
}

func (b *wgpuBackend) Release() {
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	b.configured = false
}

// wgpuFrame holds the acquired swapchain texture and its view until present.
type wgpuFrame struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (f *wgpuFrame) View() *wgpu.TextureView {
	return f.view
}

func (f *wgpuFrame) Release() {
	if f.view != nil {
		f.view.Release()
		f.view = nil
	}
	if f.texture != nil {
		f.texture.Release()
		f.texture = nil
	}
}

type wgpuCommandEncoder struct {
	encoder *wgpu.CommandEncoder
}

func (e *wgpuCommandEncoder) BeginRenderPass(view *wgpu.TextureView, load LoadOp) RenderPassEncoder {
	attachment := wgpu.RenderPassColorAttachment{
		View:    view,
		LoadOp:  wgpu.LoadOpLoad,
		StoreOp: wgpu.StoreOpStore,
	}
	if load.IsClear() {
		attachment.LoadOp = wgpu.LoadOpClear
		attachment.ClearValue = load.Color()
	}

	pass := e.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{attachment},
	})
	return &wgpuRenderPass{pass: pass}
}

func (e *wgpuCommandEncoder) Finish() (CommandBuffer, error) {
	if e.encoder == nil {
		return nil, errors.New("gpu: command encoder already released")
	}
	buffer, err := e.encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	return &wgpuCommandBuffer{buffer: buffer}, nil
}

func (e *wgpuCommandEncoder) Release() {
	if e.encoder != nil {
		e.encoder.Release()
		e.encoder = nil
	}
}

type wgpuCommandBuffer struct {
	buffer *wgpu.CommandBuffer
}

func (c *wgpuCommandBuffer) Release() {
	if c.buffer != nil {
		c.buffer.Release()
		c.buffer = nil
	}
}

// wgpuRenderPass forwards draw recording to the underlying pass encoder.
type wgpuRenderPass struct {
	pass *wgpu.RenderPassEncoder
}

func (p *wgpuRenderPass) SetPipeline(pipeline *wgpu.RenderPipeline) {
	p.pass.SetPipeline(pipeline)
}

func (p *wgpuRenderPass) SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	p.pass.SetBindGroup(groupIndex, group, dynamicOffsets)
}

func (p *wgpuRenderPass) SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64) {
	p.pass.SetVertexBuffer(slot, buffer, offset, size)
}

func (p *wgpuRenderPass) SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64) {
	p.pass.SetIndexBuffer(buffer, format, offset, size)
}

func (p *wgpuRenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *wgpuRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *wgpuRenderPass) End() {
	p.pass.End()
}
