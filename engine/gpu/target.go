package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// LoadOp describes what happens to a pass's color attachment when the pass begins: either it is
// cleared to a color or its previous contents are loaded.
type LoadOp struct {
	clear bool
	color wgpu.Color
}

// Clear returns a LoadOp that clears the attachment to c.
func Clear(c wgpu.Color) LoadOp {
	return LoadOp{clear: true, color: c}
}

// Load returns a LoadOp that keeps the attachment's previous contents.
func Load() LoadOp {
	return LoadOp{}
}

// IsClear reports whether the attachment is cleared when the pass begins.
func (op LoadOp) IsClear() bool {
	return op.clear
}

// Color returns the clear color. Only meaningful when IsClear is true.
func (op LoadOp) Color() wgpu.Color {
	return op.color
}

func (op LoadOp) String() string {
	if !op.clear {
		return "load"
	}
	return fmt.Sprintf("clear(%.3g, %.3g, %.3g, %.3g)", op.color.R, op.color.G, op.color.B, op.color.A)
}

// OffscreenTexture is a render-attachment texture privately owned by one program.
type OffscreenTexture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Format  wgpu.TextureFormat
	Width   uint32
	Height  uint32
}

// Release frees the view and the texture. Safe to call on a partially populated value.
func (t *OffscreenTexture) Release() {
	if t == nil {
		return
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// RenderTarget selects where a program's pass is recorded: the shared presentation surface or
// an offscreen texture owned by the program.
type RenderTarget struct {
	offscreen bool
	texture   *OffscreenTexture
}

// Surface returns the shared presentation-surface target.
func Surface() RenderTarget {
	return RenderTarget{}
}

// Offscreen returns a target recording into tex. The texture stays owned by the program.
func Offscreen(tex *OffscreenTexture) RenderTarget {
	return RenderTarget{offscreen: true, texture: tex}
}

// IsSurface reports whether the target is the shared presentation surface.
func (t RenderTarget) IsSurface() bool {
	return !t.offscreen
}

// Valid reports whether a pass can be begun against the target. An offscreen target without a
// texture view is not valid.
func (t RenderTarget) Valid() bool {
	return !t.offscreen || (t.texture != nil && t.texture.View != nil)
}

// Texture returns the offscreen texture, or nil for the surface target.
func (t RenderTarget) Texture() *OffscreenTexture {
	return t.texture
}

func (t RenderTarget) String() string {
	if !t.offscreen {
		return "surface"
	}
	if t.texture == nil {
		return "offscreen(nil)"
	}
	return fmt.Sprintf("offscreen(%dx%d)", t.texture.Width, t.texture.Height)
}
