package conductor

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// frameScratch holds the single encoder and the single surface frame of one cycle. Both are
// created on first use so a tick in which nothing renders never touches the GPU.
type frameScratch struct {
	presenter gpu.Presenter
	encoder   gpu.CommandEncoder
	frame     gpu.Frame

	// surfaceless is set while the surface has zero area; no frame is acquired then.
	surfaceless bool
}

// commandEncoder returns the cycle's encoder, creating it on first use.
func (f *frameScratch) commandEncoder() (gpu.CommandEncoder, error) {
	if f.encoder != nil {
		return f.encoder, nil
	}
	enc, err := f.presenter.CreateCommandEncoder()
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	f.encoder = enc
	return enc, nil
}

// surfaceFrame returns the cycle's surface frame, acquiring it on first use.
func (f *frameScratch) surfaceFrame() (gpu.Frame, error) {
	if f.frame != nil {
		return f.frame, nil
	}
	fr, err := f.presenter.AcquireFrame()
	if err != nil {
		return nil, err
	}
	f.frame = fr
	return fr, nil
}

// view resolves the texture view a program's pass targets.
func (f *frameScratch) view(target gpu.RenderTarget) (*wgpu.TextureView, error) {
	if !target.IsSurface() {
		return target.Texture().View, nil
	}
	fr, err := f.surfaceFrame()
	if err != nil {
		return nil, err
	}
	return fr.View(), nil
}

// submit finishes the encoder, if any, and submits it. Returns how many buffers were submitted.
func (f *frameScratch) submit() (int, error) {
	if f.encoder == nil {
		return 0, nil
	}
	enc := f.encoder
	f.encoder = nil
	defer enc.Release()

	buf, err := enc.Finish()
	if err != nil {
		return 0, fmt.Errorf("finish command encoder: %w", err)
	}
	if err := f.presenter.Submit(buf); err != nil {
		return 0, fmt.Errorf("submit: %w", err)
	}
	return 1, nil
}

// present presents the acquired frame, if any. Returns how many frames were presented.
func (f *frameScratch) present() int {
	if f.frame == nil {
		return 0
	}
	fr := f.frame
	f.frame = nil
	f.presenter.Present(fr)
	return 1
}

// release drops whatever was not submitted or presented.
func (f *frameScratch) release() {
	if f.encoder != nil {
		f.encoder.Release()
		f.encoder = nil
	}
	if f.frame != nil {
		f.frame.Release()
		f.frame = nil
	}
}
