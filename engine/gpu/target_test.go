package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestLoadOp(t *testing.T) {
	assert.False(t, Load().IsClear())
	assert.Equal(t, "load", Load().String())

	red := wgpu.Color{R: 1, A: 1}
	op := Clear(red)
	assert.True(t, op.IsClear())
	assert.Equal(t, red, op.Color())
	assert.Equal(t, "clear(1, 0, 0, 1)", op.String())

	assert.False(t, LoadOp{}.IsClear(), "zero value loads")
}

func TestRenderTarget(t *testing.T) {
	s := Surface()
	assert.True(t, s.IsSurface())
	assert.True(t, s.Valid())
	assert.Nil(t, s.Texture())
	assert.Equal(t, "surface", s.String())

	tex := &OffscreenTexture{View: &wgpu.TextureView{}, Width: 64, Height: 32}
	o := Offscreen(tex)
	assert.False(t, o.IsSurface())
	assert.True(t, o.Valid())
	assert.Same(t, tex, o.Texture())
	assert.Equal(t, "offscreen(64x32)", o.String())

	missing := Offscreen(nil)
	assert.False(t, missing.IsSurface(), "a nil texture is not the surface")
	assert.False(t, missing.Valid())
	assert.False(t, Offscreen(&OffscreenTexture{}).Valid())
}

func TestOffscreenTextureReleaseNil(t *testing.T) {
	var tex *OffscreenTexture
	assert.NotPanics(t, tex.Release)
	assert.NotPanics(t, (&OffscreenTexture{}).Release)
}
