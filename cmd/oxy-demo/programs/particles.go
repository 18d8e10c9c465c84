package programs

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-conductor/engine/event"
	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/program"
	"github.com/Carmen-Shannon/oxy-conductor/engine/timing"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/rs/zerolog/log"
)

const particleShader = `
@vertex
fn vs_main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.85, 0.4, 1.0);
}
`

const particleStep = 33 * time.Millisecond

// Particles simulates a point cloud on a worker pool and draws it into its own offscreen texture.
// It renders once per simulation step, so the texture always holds the latest state.
type Particles struct {
	program.Base[DemoState]

	options []program.ProgramRendererBuilderOption
	count   int
	workers int

	sim      *simulation
	pool     worker.DynamicWorkerPool
	pipeline *pipeline
	vertices *wgpu.Buffer
	texture  *gpu.OffscreenTexture
	last     time.Time
}

var _ program.Program[DemoState] = &Particles{}

// NewParticles creates the program. Options are applied over its defaults: offscreen target,
// update every 33ms, render after each update.
//
// Parameters:
//   - count: the number of particles
//   - workers: the number of simulation workers
//   - options: renderer overrides
//
// Returns:
//   - *Particles: the program
func NewParticles(count, workers int, options ...program.ProgramRendererBuilderOption) *Particles {
	return &Particles{
		options: options,
		count:   max(count, 1),
		workers: max(workers, 1),
	}
}

func (p *Particles) Init(s *DemoState, ctx gpu.Context) (program.ProgramRenderer, error) {
	device := ctx.Device()
	if device == nil {
		return nil, errNoDevice
	}

	p.pipeline = newPipeline("particles", particleShader,
		WithTopology(wgpu.PrimitiveTopologyPointList),
		WithVertexLayout(wgpu.VertexBufferLayout{
			ArrayStride: 8,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{{
				Format:         wgpu.VertexFormatFloat32x2,
				Offset:         0,
				ShaderLocation: 0,
			}},
		}),
	)
	if err := p.pipeline.build(device, ctx.SurfaceFormat()); err != nil {
		return nil, err
	}

	p.sim = newSimulation(p.count, max(p.count/p.workers, 1), uint64(time.Now().UnixNano()))
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "particles Vertex Buffer",
		Size:  uint64(len(p.sim.vertices)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		p.pipeline.Release()
		return nil, fmt.Errorf("particle buffer: %w", err)
	}
	p.vertices = buf
	ctx.Queue().WriteBuffer(p.vertices, 0, p.sim.vertices)

	width, height := ctx.Size()
	p.texture, err = ctx.CreateOffscreenTexture("particles", max(width, 1), max(height, 1))
	if err != nil {
		p.release()
		return nil, err
	}

	p.pool = worker.NewDynamicWorkerPool(p.workers, 256, time.Second)
	p.last = time.Now()

	return program.NewProgramRenderer(append([]program.ProgramRendererBuilderOption{
		program.WithTarget(gpu.Offscreen(p.texture)),
		program.WithClear(gpu.Clear(wgpu.Color{})),
		program.WithUpdateRate(timing.MustFixedInterval(particleStep)),
		program.WithRenderRate(timing.Immediate()),
	}, p.options...)...), nil
}

func (p *Particles) OnEvent(_ *DemoState, ctx gpu.Context, _ program.ProgramRenderer, ev event.Event) program.Return {
	e, ok := ev.(event.Resized)
	if !ok || e.Width == 0 || e.Height == 0 {
		return program.Continue()
	}

	p.texture.Release()
	tex, err := ctx.CreateOffscreenTexture("particles", e.Width, e.Height)
	if err != nil {
		// The released texture leaves the target invalid, so renders are skipped until the next resize.
		log.Warn().Err(err).Str("program", "particles").Msg("offscreen texture resize failed")
		return program.Continue()
	}
	p.texture = tex
	return program.Set(
		program.WithTarget(gpu.Offscreen(tex)),
		program.WithRenderRate(timing.Immediate()),
	)
}

func (p *Particles) Update(_ *DemoState, ctx gpu.Context, _ program.ProgramRenderer) program.Return {
	now := time.Now()
	dt := float32(min(now.Sub(p.last), 4*particleStep).Seconds())
	p.last = now

	p.sim.step(p.submit, dt)
	ctx.Queue().WriteBuffer(p.vertices, 0, p.sim.vertices)
	return program.Set(program.WithRenderRate(timing.Immediate()))
}

func (p *Particles) Render(_ *DemoState, _ gpu.Context, r program.ProgramRenderer, pass gpu.RenderPass) {
	pass.SetPipeline(p.pipeline.render)
	pass.SetVertexBuffer(0, p.vertices, 0, uint64(len(p.sim.vertices)))
	pass.Draw(uint32(p.count), 1, 0, 0)
	r.SetRenderRate(timing.Disabled())
}

func (p *Particles) OnExit(*DemoState, gpu.Context) error {
	p.release()
	return nil
}

func (p *Particles) submit(t worker.Task) {
	p.pool.SubmitTask(t)
}

func (p *Particles) release() {
	p.texture.Release()
	p.texture = nil
	if p.vertices != nil {
		p.vertices.Release()
		p.vertices = nil
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
}
