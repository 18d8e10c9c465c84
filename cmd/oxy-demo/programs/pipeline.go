package programs

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

var errNoDevice = errors.New("pipeline: no device")

// PipelineBuilderOption is a functional option used to configure a pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// pipeline describes a single-module WGSL render pipeline and owns the GPU objects built from it.
type pipeline struct {
	label         string
	source        string
	vertexEntry   string
	fragmentEntry string

	topology      wgpu.PrimitiveTopology
	frontFace     wgpu.FrontFace
	cullMode      wgpu.CullMode
	writeMask     wgpu.ColorWriteMask
	blendState    *wgpu.BlendState
	vertexLayouts []wgpu.VertexBufferLayout

	module *wgpu.ShaderModule
	layout *wgpu.PipelineLayout
	render *wgpu.RenderPipeline
}

// newPipeline describes a pipeline whose vertex and fragment stages live in one WGSL source with
// entry points vs_main and fs_main.
//
// Parameters:
//   - label: the debug label for the GPU objects
//   - source: the WGSL source
//   - options: functional options for the pipeline state
//
// Returns:
//   - *pipeline: the unbuilt pipeline
func newPipeline(label, source string, options ...PipelineBuilderOption) *pipeline {
	p := &pipeline{
		label:         label,
		source:        source,
		vertexEntry:   "vs_main",
		fragmentEntry: "fs_main",
		topology:      wgpu.PrimitiveTopologyTriangleList,
		frontFace:     wgpu.FrontFaceCCW,
		cullMode:      wgpu.CullModeNone,
		writeMask:     wgpu.ColorWriteMaskAll,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// WithTopology sets the primitive topology.
//
// Parameters:
//   - topology: e.g. wgpu.PrimitiveTopologyPointList
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the winding order of front-facing triangles.
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithCullMode sets which faces are culled.
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithWriteMask sets the colour channels the pipeline writes.
func WithWriteMask(mask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = mask
	}
}

// WithBlendState enables blending with the given state. nil disables blending.
func WithBlendState(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = state
	}
}

// WithVertexLayout appends a vertex buffer layout. Layouts bind to slots in the order given.
//
// Parameters:
//   - layout: the vertex buffer layout
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithVertexLayout(layout wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexLayouts = append(p.vertexLayouts, layout)
	}
}

// build compiles the shader and creates the render pipeline for the given colour format.
//
// Parameters:
//   - device: the device to create the objects on
//   - format: the colour target format
//
// Returns:
//   - error: errNoDevice for a nil device, or the first creation error
func (p *pipeline) build(device *wgpu.Device, format wgpu.TextureFormat) error {
	if device == nil {
		return errNoDevice
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: p.label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: p.source,
		},
	})
	if err != nil {
		return fmt.Errorf("shader %q: %w", p.label, err)
	}
	p.module = module

	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: p.label,
	})
	if err != nil {
		p.Release()
		return fmt.Errorf("pipeline layout %q: %w", p.label, err)
	}
	p.layout = layout

	render, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.label + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.vertexEntry,
			Buffers:    p.vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.fragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				Blend:     p.blendState,
				WriteMask: p.writeMask,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.Release()
		return fmt.Errorf("render pipeline %q: %w", p.label, err)
	}
	p.render = render
	return nil
}

// Release frees whatever build created. Safe to call on an unbuilt pipeline.
func (p *pipeline) Release() {
	if p.render != nil {
		p.render.Release()
		p.render = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
}
