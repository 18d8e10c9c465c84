package conductor

import (
	"fmt"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-conductor/engine/event"
	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/program"
	"github.com/cogentcore/webgpu/wgpu"
)

// fakeGPU records every call the conductor makes across the gpu boundary.
type fakeGPU struct {
	surface       *wgpu.TextureView
	width, height int
	acquireErr    error
	finishErr     error

	calls           []string
	acquires        int
	encoders        int
	encoderReleases int
	begins          int
	ends            int
	submits         int
	presents        int
	frameReleases   int
}

var (
	_ gpu.Context   = &fakeGPU{}
	_ gpu.Presenter = &fakeGPU{}
)

func newFakeGPU() *fakeGPU {
	return &fakeGPU{surface: &wgpu.TextureView{}, width: 800, height: 600}
}

func (g *fakeGPU) Device() *wgpu.Device              { return nil }
func (g *fakeGPU) Queue() *wgpu.Queue                { return nil }
func (g *fakeGPU) SurfaceFormat() wgpu.TextureFormat { return wgpu.TextureFormatBGRA8Unorm }
func (g *fakeGPU) Size() (width, height int)         { return g.width, g.height }
func (g *fakeGPU) record(format string, args ...any) {
	g.calls = append(g.calls, fmt.Sprintf(format, args...))
}
func (g *fakeGPU) countCalls(prefix string) (n int) {
	for _, c := range g.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (g *fakeGPU) CreateOffscreenTexture(label string, width, height int) (*gpu.OffscreenTexture, error) {
	return &gpu.OffscreenTexture{View: &wgpu.TextureView{}, Width: uint32(width), Height: uint32(height)}, nil
}

func (g *fakeGPU) AcquireFrame() (gpu.Frame, error) {
	if g.acquireErr != nil {
		return nil, fmt.Errorf("%w: %w", gpu.ErrFrameUnavailable, g.acquireErr)
	}
	g.acquires++
	g.record("acquire")
	return &fakeFrame{gpu: g}, nil
}

func (g *fakeGPU) CreateCommandEncoder() (gpu.CommandEncoder, error) {
	g.encoders++
	g.record("encoder")
	return &fakeEncoder{gpu: g}, nil
}

func (g *fakeGPU) Submit(buffer gpu.CommandBuffer) error {
	if _, ok := buffer.(*fakeBuffer); !ok {
		return gpu.ErrForeignResource
	}
	g.submits++
	g.record("submit")
	buffer.Release()
	return nil
}

func (g *fakeGPU) Present(frame gpu.Frame) {
	g.presents++
	g.record("present")
}

type fakeFrame struct {
	gpu *fakeGPU
}

func (f *fakeFrame) View() *wgpu.TextureView { return f.gpu.surface }
func (f *fakeFrame) Release()                { f.gpu.frameReleases++ }

type fakeEncoder struct {
	gpu *fakeGPU
}

func (e *fakeEncoder) BeginRenderPass(view *wgpu.TextureView, load gpu.LoadOp) gpu.RenderPassEncoder {
	e.gpu.begins++
	target := "offscreen"
	if view == e.gpu.surface {
		target = "surface"
	}
	e.gpu.record("begin %s %s", target, load)
	return &fakePass{gpu: e.gpu}
}

func (e *fakeEncoder) Finish() (gpu.CommandBuffer, error) {
	if e.gpu.finishErr != nil {
		return nil, e.gpu.finishErr
	}
	return &fakeBuffer{}, nil
}

func (e *fakeEncoder) Release() { e.gpu.encoderReleases++ }

type fakeBuffer struct{}

func (b *fakeBuffer) Release() {}

type fakePass struct {
	gpu *fakeGPU
}

func (p *fakePass) SetPipeline(*wgpu.RenderPipeline)                              {}
func (p *fakePass) SetBindGroup(uint32, *wgpu.BindGroup, []uint32)                {}
func (p *fakePass) SetVertexBuffer(uint32, *wgpu.Buffer, uint64, uint64)          {}
func (p *fakePass) SetIndexBuffer(*wgpu.Buffer, wgpu.IndexFormat, uint64, uint64) {}
func (p *fakePass) DrawIndexed(uint32, uint32, uint32, int32, uint32)             {}
func (p *fakePass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.gpu.record("draw %d", vertexCount)
}
func (p *fakePass) End() {
	p.gpu.ends++
	p.gpu.record("end")
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testState struct {
	trace []string
}

// testProgram counts its callbacks and draws its tag once per Render.
type testProgram struct {
	tag      uint32
	options  []program.ProgramRendererBuilderOption
	initErr  error
	exitErr  error
	onEvent  func(s *testState, r program.ProgramRenderer, ev event.Event) program.Return
	onUpdate func(s *testState, r program.ProgramRenderer) program.Return
	onRender func(s *testState, pass gpu.RenderPass)

	events  int
	updates int
	renders int
	exits   int
}

func (p *testProgram) Init(s *testState, ctx gpu.Context) (program.ProgramRenderer, error) {
	if p.initErr != nil {
		return nil, p.initErr
	}
	return program.NewProgramRenderer(p.options...), nil
}

func (p *testProgram) OnEvent(s *testState, ctx gpu.Context, r program.ProgramRenderer, ev event.Event) program.Return {
	p.events++
	if p.onEvent != nil {
		return p.onEvent(s, r, ev)
	}
	return program.Continue()
}

func (p *testProgram) Update(s *testState, ctx gpu.Context, r program.ProgramRenderer) program.Return {
	p.updates++
	if p.onUpdate != nil {
		return p.onUpdate(s, r)
	}
	return program.Continue()
}

func (p *testProgram) Render(s *testState, ctx gpu.Context, r program.ProgramRenderer, pass gpu.RenderPass) {
	p.renders++
	if p.onRender != nil {
		p.onRender(s, pass)
	}
	pass.Draw(p.tag, 1, 0, 0)
}

func (p *testProgram) OnExit(s *testState, ctx gpu.Context) error {
	p.exits++
	return p.exitErr
}
