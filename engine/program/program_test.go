package program

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/timing"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgramRendererDefaults(t *testing.T) {
	r := NewProgramRenderer()

	assert.True(t, r.Target().IsSurface())
	assert.True(t, r.Clear().IsClear())
	assert.Equal(t, wgpu.Color{A: 1}, r.Clear().Color())
	assert.Equal(t, timing.KindImmediate, r.UpdateTiming().Kind())
	assert.Equal(t, timing.KindImmediate, r.RenderTiming().Kind())
}

func TestNewProgramRendererOptions(t *testing.T) {
	tex := &gpu.OffscreenTexture{View: &wgpu.TextureView{}, Width: 4, Height: 4}
	r := NewProgramRenderer(
		WithTarget(gpu.Offscreen(tex)),
		WithClear(gpu.Load()),
		WithUpdateRate(timing.Disabled()),
		WithRenderRate(timing.MustFixedRate(30)),
	)

	assert.False(t, r.Target().IsSurface())
	assert.Same(t, tex, r.Target().Texture())
	assert.False(t, r.Clear().IsClear())
	assert.Equal(t, timing.KindDisabled, r.UpdateTiming().Kind())
	assert.Equal(t, timing.KindFixedRate, r.RenderTiming().Kind())
}

func TestProgramRendererCheckAndReset(t *testing.T) {
	r := NewProgramRenderer(WithUpdateRate(timing.MustFixedInterval(100 * time.Millisecond)))
	now := time.Unix(100, 0)

	require.True(t, r.CheckUpdate(now).Ready())
	r.ResetUpdate(now)

	st := r.CheckUpdate(now.Add(40 * time.Millisecond))
	assert.Equal(t, timing.StateWaiting, st.State)
	assert.Equal(t, 60*time.Millisecond, st.Remaining)
	assert.True(t, r.CheckRender(now).Ready(), "render timing is independent of update timing")

	r.SetUpdateRate(timing.Disabled())
	assert.Equal(t, timing.StateIgnore, r.CheckUpdate(now).State)
}

func TestReturnKinds(t *testing.T) {
	var zero Return
	assert.Equal(t, ReturnNone, zero.Kind())
	assert.Equal(t, ReturnNone, Continue().Kind())
	assert.Equal(t, ReturnExit, Exit().Kind())
	assert.True(t, Exit().IsExit())
	assert.Equal(t, ReturnSet, Set(WithClear(gpu.Load())).Kind())
	assert.Equal(t, ReturnNone, Set().Kind())
	assert.Equal(t, "set", ReturnSet.String())
}

func TestReturnApply(t *testing.T) {
	r := NewProgramRenderer()

	Set(WithRenderRate(timing.Disabled()), WithClear(gpu.Load())).Apply(r)
	assert.Equal(t, timing.KindDisabled, r.RenderTiming().Kind())
	assert.False(t, r.Clear().IsClear())

	Set(WithRenderRate(timing.Immediate())).Apply(r)
	assert.Equal(t, timing.KindImmediate, r.RenderTiming().Kind())

	Exit().Apply(r)
	Continue().Apply(r)
	assert.Equal(t, timing.KindImmediate, r.RenderTiming().Kind())
}

func TestSetLastSettingWins(t *testing.T) {
	r := NewProgramRenderer()
	Set(WithUpdateRate(timing.Disabled()), WithUpdateRate(timing.Immediate())).Apply(r)
	assert.Equal(t, timing.KindImmediate, r.UpdateTiming().Kind())
}
