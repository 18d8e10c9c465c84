// Package config loads and saves the YAML application configuration: window, graphics and engine
// settings plus per-program cadence overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/program"
	"github.com/Carmen-Shannon/oxy-conductor/engine/timing"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Cadence is a timing.Timing written as text in YAML: "immediate", "disabled", "60hz" or a
// duration such as "250ms".
type Cadence struct {
	timing.Timing
}

// UnmarshalYAML decodes a cadence through timing.Parse.
func (c *Cadence) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	t, err := timing.Parse(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	c.Timing = t
	return nil
}

// MarshalYAML encodes a cadence in the form UnmarshalYAML accepts.
func (c Cadence) MarshalYAML() (any, error) {
	return c.Timing.Text(), nil
}

// Window holds the window settings passed to window.NewWindow.
type Window struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Resizable bool   `yaml:"resizable"`
}

// Graphics selects presentation behaviour and the adapter.
type Graphics struct {
	PresentMode      string `yaml:"present_mode"` // "vsync" | "uncapped"
	SoftwareRenderer bool   `yaml:"software_renderer"`
	SkipIdlePresent  bool   `yaml:"skip_idle_present"`
}

// Mode returns the configured present mode.
func (g Graphics) Mode() (gpu.PresentMode, error) {
	switch strings.ToLower(strings.TrimSpace(g.PresentMode)) {
	case "", "vsync", "fifo":
		return gpu.PresentModeVSync, nil
	case "uncapped", "immediate":
		return gpu.PresentModeUncapped, nil
	default:
		return 0, fmt.Errorf("%w: present_mode %q", ErrInvalid, g.PresentMode)
	}
}

// Engine tunes the host loop, the profiler and the diagnostics hub.
type Engine struct {
	MaxWait         time.Duration `yaml:"max_wait"`
	FaultIsolation  bool          `yaml:"fault_isolation"`
	ProxyCapacity   int           `yaml:"proxy_capacity"`
	Profiling       bool          `yaml:"profiling"`
	ProfileInterval time.Duration `yaml:"profile_interval"`
	Diagnostics     string        `yaml:"diagnostics,omitempty"` // listen address, empty disables
}

// Program overrides the cadences a program picks in Init. Unset fields keep the program's choice.
type Program struct {
	Disabled bool     `yaml:"disabled,omitempty"`
	Update   *Cadence `yaml:"update,omitempty"`
	Render   *Cadence `yaml:"render,omitempty"`
}

// RendererOptions returns the overrides as renderer settings, to be applied after the program's
// own defaults.
func (p Program) RendererOptions() []program.ProgramRendererBuilderOption {
	var opts []program.ProgramRendererBuilderOption
	if p.Update != nil {
		opts = append(opts, program.WithUpdateRate(p.Update.Timing))
	}
	if p.Render != nil {
		opts = append(opts, program.WithRenderRate(p.Render.Timing))
	}
	return opts
}

// Config is the whole application configuration as stored in YAML.
type Config struct {
	LogLevel string             `yaml:"log_level"`
	Window   Window             `yaml:"window"`
	Graphics Graphics           `yaml:"graphics"`
	Engine   Engine             `yaml:"engine"`
	Programs map[string]Program `yaml:"programs,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Window: Window{
			Title:     "oxy-conductor",
			Width:     1280,
			Height:    720,
			Resizable: true,
		},
		Graphics: Graphics{
			PresentMode:     "vsync",
			SkipIdlePresent: true,
		},
		Engine: Engine{
			MaxWait:         time.Second,
			FaultIsolation:  true,
			ProxyCapacity:   64,
			ProfileInterval: time.Second,
		},
	}
}

// Program returns the overrides for the named program, or the zero Program.
func (c *Config) Program(name string) Program {
	if c == nil || c.Programs == nil {
		return Program{}
	}
	return c.Programs[name]
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if _, err := c.Graphics.Mode(); err != nil {
		return err
	}
	if c.Engine.MaxWait < 0 {
		return fmt.Errorf("%w: negative max_wait %s", ErrInvalid, c.Engine.MaxWait)
	}
	if c.Engine.ProxyCapacity < 0 {
		return fmt.Errorf("%w: negative proxy_capacity %d", ErrInvalid, c.Engine.ProxyCapacity)
	}
	return nil
}

// Load reads path over the defaults. Keys missing from the file keep their default value.
//
// Parameters:
//   - path: the YAML file to read
//
// Returns:
//   - *Config: the loaded configuration
//   - error: a read, decode or validation error
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path as YAML.
func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
