package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-conductor/cmd/oxy-demo/programs"
	"github.com/Carmen-Shannon/oxy-conductor/common"
	"github.com/Carmen-Shannon/oxy-conductor/engine"
	"github.com/Carmen-Shannon/oxy-conductor/engine/conductor"
	"github.com/Carmen-Shannon/oxy-conductor/engine/config"
	"github.com/Carmen-Shannon/oxy-conductor/engine/event"
	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/profiler"
	"github.com/Carmen-Shannon/oxy-conductor/engine/program"
	"github.com/Carmen-Shannon/oxy-conductor/engine/window"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type flags struct {
	configPath  string
	writeConfig string
	logLevel    string
	diag        string
	profile     bool
	uncapped    bool
	software    bool
	particles   int
	workers     int
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:   "oxy-demo",
		Short: "Run several rendering programs on one window",
		Long: "oxy-demo runs a background pulse, a render-on-demand triangle and an offscreen particle " +
			"simulation through one conductor: one submit and at most one present per frame.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			setupLogging(cfg.LogLevel)
			if f.writeConfig != "" {
				if err := config.Save(f.writeConfig, cfg); err != nil {
					return err
				}
				log.Info().Str("path", f.writeConfig).Msg("configuration written")
				return nil
			}
			return run(cfg, &f)
		},
	}

	bindFlags(root, &f)
	return root
}

func bindFlags(cmd *cobra.Command, f *flags) {
	cmd.Flags().StringVar(&f.configPath, "config", "oxy-demo.yaml", "path to the YAML configuration (optional)")
	cmd.Flags().StringVar(&f.writeConfig, "write-config", "", "write the effective configuration to this path and exit")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	cmd.Flags().StringVar(&f.diag, "diag", "", "serve diagnostics over websocket at this address, e.g. :7070")
	cmd.Flags().BoolVar(&f.profile, "profile", false, "log profiler snapshots")
	cmd.Flags().BoolVar(&f.uncapped, "uncapped", false, "present without vsync")
	cmd.Flags().BoolVar(&f.software, "software", false, "force the software (fallback) adapter")
	cmd.Flags().IntVar(&f.particles, "particles", 4096, "number of simulated particles")
	cmd.Flags().IntVar(&f.workers, "workers", runtimeWorkers(), "particle simulation workers")
}

// loadConfig reads the configuration file, falling back to defaults when it does not exist, and
// applies flags the user set explicitly.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("diag") {
		cfg.Engine.Diagnostics = f.diag
	}
	if changed("profile") {
		cfg.Engine.Profiling = f.profile
	}
	if changed("uncapped") {
		cfg.Graphics.PresentMode = "vsync"
		if f.uncapped {
			cfg.Graphics.PresentMode = "uncapped"
		}
	}
	if changed("software") {
		cfg.Graphics.SoftwareRenderer = f.software
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	lvl, err := zerolog.ParseLevel(common.Coalesce(level, "info"))
	if err != nil {
		log.Warn().Err(err).Str("level", level).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func run(cfg *config.Config, f *flags) error {
	mode, err := cfg.Graphics.Mode()
	if err != nil {
		return err
	}

	state := programs.NewDemoState(cfg.Window.Width, cfg.Window.Height)
	e, err := engine.NewEngine(state,
		engine.WithLogger[programs.DemoState, string](log.Logger),
		engine.WithWindowOptions[programs.DemoState, string](
			window.WithTitle(cfg.Window.Title),
			window.WithWidth(cfg.Window.Width),
			window.WithHeight(cfg.Window.Height),
			window.WithResizable(cfg.Window.Resizable),
		),
		engine.WithBackendOptions[programs.DemoState, string](
			gpu.WithPresentMode(mode),
			gpu.WithForceSoftwareRenderer(cfg.Graphics.SoftwareRenderer),
			gpu.WithDeviceLabel("oxy-demo"),
		),
		engine.WithInputRouter[programs.DemoState, string](programs.Route),
		engine.WithConductorOptions[programs.DemoState, string](
			conductor.WithFaultIsolation[programs.DemoState](cfg.Engine.FaultIsolation),
			conductor.WithSkipIdlePresent[programs.DemoState](cfg.Graphics.SkipIdlePresent),
		),
		engine.WithProxyCapacity[programs.DemoState, string](cfg.Engine.ProxyCapacity),
		engine.WithMaxWait[programs.DemoState, string](cfg.Engine.MaxWait),
		engine.WithProfiling[programs.DemoState, string](cfg.Engine.Profiling),
		engine.WithProfilerOptions[programs.DemoState, string](profiler.WithInterval(cfg.Engine.ProfileInterval)),
		engine.WithDiagnostics[programs.DemoState, string](cfg.Engine.Diagnostics),
	)
	if err != nil {
		log.Error().Err(err).Msg("engine setup failed")
		return err
	}

	demos := []struct {
		name  string
		build func(options ...program.ProgramRendererBuilderOption) program.Program[programs.DemoState]
	}{
		{"clear_pulse", func(o ...program.ProgramRendererBuilderOption) program.Program[programs.DemoState] {
			return programs.NewClearPulse(o...)
		}},
		{"triangle", func(o ...program.ProgramRendererBuilderOption) program.Program[programs.DemoState] {
			return programs.NewTriangle(o...)
		}},
		{"particles", func(o ...program.ProgramRendererBuilderOption) program.Program[programs.DemoState] {
			return programs.NewParticles(f.particles, f.workers, o...)
		}},
	}
	for _, d := range demos {
		overrides := cfg.Program(d.name)
		if overrides.Disabled {
			log.Info().Str("program", d.name).Msg("disabled by configuration")
			continue
		}
		if _, err := e.AddProgram(d.name, d.build(overrides.RendererOptions()...)); err != nil {
			// A failed program is left out; the others still run.
			log.Error().Err(err).Str("program", d.name).Msg("program not started")
		}
	}
	if len(e.Conductor().Programs()) == 0 {
		e.Quit()
		_ = e.Run()
		return fmt.Errorf("no programs could be started")
	}

	stop := forwardSignals(e)
	defer stop()

	if err := e.Run(); err != nil {
		log.Error().Err(err).Msg("engine stopped")
		return err
	}
	log.Info().Msg("bye")
	return nil
}

func runtimeWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// forwardSignals turns SIGINT/SIGTERM into an interrupt user event and SIGHUP into a redraw.
func forwardSignals(e engine.Engine[programs.DemoState, string]) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-ch:
				payload := programs.UserInterrupt
				if sig == syscall.SIGHUP {
					payload = programs.UserRedraw
				}
				deliverSignal(payload, e.Proxy().Send, e.Quit)
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// deliverSignal posts payload through send. An interrupt that finds the queue full falls back to
// quit. A closed queue means the engine is already tearing down, so nothing else is touched.
func deliverSignal(payload string, send func(string) error, quit func()) {
	err := send(payload)
	if err == nil || errors.Is(err, event.ErrProxyClosed) || payload != programs.UserInterrupt {
		return
	}
	quit()
}
