package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/program"
	"github.com/Carmen-Shannon/oxy-conductor/engine/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
log_level: debug
window:
  title: demo
  width: 800
  height: 600
graphics:
  present_mode: uncapped
engine:
  max_wait: 250ms
  diagnostics: ":7070"
programs:
  pulse:
    update: 10hz
    render: 60hz
  triangle:
    render: disabled
  particles:
    update: 20ms
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadOverDefaults(t *testing.T) {
	c, err := Load(writeFile(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "demo", c.Window.Title)
	assert.Equal(t, 800, c.Window.Width)
	assert.True(t, c.Window.Resizable, "missing keys keep defaults")
	assert.Equal(t, 250*time.Millisecond, c.Engine.MaxWait)
	assert.Equal(t, ":7070", c.Engine.Diagnostics)
	assert.True(t, c.Engine.FaultIsolation)

	mode, err := c.Graphics.Mode()
	require.NoError(t, err)
	assert.Equal(t, gpu.PresentModeUncapped, mode)

	pulse := c.Program("pulse")
	require.NotNil(t, pulse.Update)
	assert.Equal(t, timing.KindFixedRate, pulse.Update.Kind())
	assert.Equal(t, 100*time.Millisecond, pulse.Update.Period())
	assert.Equal(t, timing.KindDisabled, c.Program("triangle").Render.Kind())
	assert.Nil(t, c.Program("triangle").Update)
	assert.Equal(t, timing.KindFixedInterval, c.Program("particles").Update.Kind())
	assert.Equal(t, Program{}, c.Program("missing"))
}

func TestLoadRejectsBadCadence(t *testing.T) {
	_, err := Load(writeFile(t, "programs:\n  pulse:\n    update: -3hz\n"))
	assert.ErrorIs(t, err, timing.ErrInvalidFrequency)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(writeFile(t, "graphics:\n  present_mode: sometimes\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(writeFile(t, "window:\n  width: 0\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSaveRoundTrip(t *testing.T) {
	c := Default()
	c.Programs = map[string]Program{
		"pulse": {
			Update: &Cadence{timing.MustFixedRate(10)},
			Render: &Cadence{timing.Disabled()},
		},
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(path, c))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "update: 10hz")
	assert.Contains(t, string(raw), "render: disabled")

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Window, back.Window)
	assert.Equal(t, c.Engine, back.Engine)
	assert.Equal(t, timing.KindFixedRate, back.Program("pulse").Update.Kind())
}

func TestRendererOptions(t *testing.T) {
	p := Program{Render: &Cadence{timing.MustFixedRate(30)}}
	r := program.NewProgramRenderer(append(
		[]program.ProgramRendererBuilderOption{program.WithRenderRate(timing.Disabled())},
		p.RendererOptions()...,
	)...)
	assert.Equal(t, timing.KindFixedRate, r.RenderTiming().Kind())
	assert.Equal(t, timing.KindImmediate, r.UpdateTiming().Kind())
	assert.Empty(t, Program{}.RendererOptions())
}
