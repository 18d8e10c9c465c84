package programs

import (
	"github.com/Carmen-Shannon/oxy-conductor/engine/event"
	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/program"
	"github.com/Carmen-Shannon/oxy-conductor/engine/timing"
)

const triangleShader = `
struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOut {
    var positions = array<vec2<f32>, 3>(
        vec2<f32>(0.0, 0.6),
        vec2<f32>(-0.6, -0.5),
        vec2<f32>(0.6, -0.5),
    );
    var colors = array<vec3<f32>, 3>(
        vec3<f32>(1.0, 0.3, 0.3),
        vec3<f32>(0.3, 1.0, 0.3),
        vec3<f32>(0.3, 0.3, 1.0),
    );
    var out: VertexOut;
    out.position = vec4<f32>(positions[index], 0.0, 1.0);
    out.color = colors[index];
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    return vec4<f32>(in.color, 1.0);
}
`

// Triangle owns the surface. It clears to the shared background and draws a triangle, but only
// when something changed: a resize, a redraw request, a new background or a visibility toggle.
type Triangle struct {
	program.Base[DemoState]

	options  []program.ProgramRendererBuilderOption
	pipeline *pipeline
	seen     uint64
	visible  bool
}

var _ program.Program[DemoState] = &Triangle{}

// NewTriangle creates the program. Options are applied over its defaults: surface target,
// background checked at 60Hz, first frame drawn immediately.
func NewTriangle(options ...program.ProgramRendererBuilderOption) *Triangle {
	return &Triangle{options: options}
}

func (p *Triangle) Init(s *DemoState, ctx gpu.Context) (program.ProgramRenderer, error) {
	p.pipeline = newPipeline("triangle", triangleShader)
	if err := p.pipeline.build(ctx.Device(), ctx.SurfaceFormat()); err != nil {
		return nil, err
	}
	p.seen = s.BackgroundVersion
	p.visible = s.Visible

	return program.NewProgramRenderer(append([]program.ProgramRendererBuilderOption{
		program.WithTarget(gpu.Surface()),
		program.WithClear(gpu.Clear(s.Background)),
		program.WithUpdateRate(timing.MustFixedRate(60)),
		program.WithRenderRate(timing.Immediate()),
	}, p.options...)...), nil
}

func (p *Triangle) OnEvent(s *DemoState, _ gpu.Context, _ program.ProgramRenderer, ev event.Event) program.Return {
	switch ev.(type) {
	case event.Resized, event.RedrawRequested:
		return p.redraw(s)
	}
	if payload, ok := userPayload(ev); ok && payload == UserRedraw {
		return p.redraw(s)
	}
	if s.Visible != p.visible {
		return p.redraw(s)
	}
	return program.Continue()
}

func (p *Triangle) Update(s *DemoState, _ gpu.Context, _ program.ProgramRenderer) program.Return {
	if s.BackgroundVersion != p.seen {
		return p.redraw(s)
	}
	return program.Continue()
}

func (p *Triangle) Render(s *DemoState, _ gpu.Context, r program.ProgramRenderer, pass gpu.RenderPass) {
	if p.visible && p.pipeline.render != nil {
		pass.SetPipeline(p.pipeline.render)
		pass.Draw(3, 1, 0, 0)
	}
	r.SetRenderRate(timing.Disabled())
}

func (p *Triangle) OnExit(*DemoState, gpu.Context) error {
	p.pipeline.Release()
	return nil
}

// redraw syncs with the shared state and schedules one render.
func (p *Triangle) redraw(s *DemoState) program.Return {
	p.seen = s.BackgroundVersion
	p.visible = s.Visible
	return program.Set(
		program.WithClear(gpu.Clear(s.Background)),
		program.WithRenderRate(timing.Immediate()),
	)
}
