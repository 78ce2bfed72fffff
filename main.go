package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	_ "github.com/joho/godotenv/autoload"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/game"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/host/ebitenhost"
	"github.com/pthm-cable/particlefield/host/rayhost"
	"github.com/pthm-cable/particlefield/host/termhost"
	"github.com/pthm-cable/particlefield/host/webhost"
)

func main() {
	// CLI flags; the environment (and .env) supplies some defaults
	backend := flag.String("backend", "raylib", "Backend: raylib, ebiten, term, web or headless")
	configPath := flag.String("config", os.Getenv("PARTICLES_CONFIG"), "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Uint64("max-ticks", 0, "Stop after N frames (0 = unlimited)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	addr := flag.String("addr", portAddr(), "Listen address for the web backend (empty = web.addr from config)")
	cursor := flag.Bool("cursor", false, "Draw the custom cursor overlay")
	hud := flag.Bool("hud", false, "Show the HUD at start (raylib backend, F3 toggles)")
	orbit := flag.Bool("orbit", true, "Drive a synthetic pointer in headless mode")
	logFile := flag.String("log-file", "", "Write logs to a file instead of stdout")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *addr == "" {
		*addr = cfg.Web.Addr
	}

	logger, closeLog, err := newLogger(*backend, *logFile, *logLevel)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		MaxTicks:  *maxTicks,
		Cursor:    *cursor,
		Logger:    logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting particle field", "backend", *backend, "seed", rngSeed, "max_ticks", *maxTicks)
	if err := run(ctx, *backend, cfg, opts, *addr, *hud, *orbit); err != nil {
		slog.Error("particle field stopped", "error", err)
		stop()
		closeLog()
		os.Exit(1)
	}
}

func run(ctx context.Context, backend string, cfg *config.Config, opts game.Options, addr string, hud, orbit bool) error {
	if backend == "web" {
		return webhost.New(cfg, opts).Run(ctx, addr)
	}

	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	switch backend {
	case "raylib":
		return rayhost.New(cfg.Screen, hud).Run(ctx, g)

	case "ebiten":
		return ebitenhost.New(cfg.Screen).Run(ctx, g)

	case "term":
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("opening terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("initializing terminal: %w", err)
		}
		defer screen.Fini()
		return termhost.New(screen, cfg.Terminal).Run(ctx, g)

	case "headless":
		return runHeadless(ctx, g, cfg, orbit)
	}
	return fmt.Errorf("unknown backend %q", backend)
}

// runHeadless draws into memory as fast as possible, optionally with a
// synthetic pointer tracing an orbit over the surface.
func runHeadless(ctx context.Context, g *game.Game, cfg *config.Config, orbit bool) error {
	m := host.NewManual(cfg.Screen.Width, cfg.Screen.Height)
	if err := g.Mount(m); err != nil {
		return err
	}
	defer g.Detach()

	n := math.MaxInt
	if limit := g.MaxTicks(); limit > 0 && limit < math.MaxInt {
		n = int(limit)
	}

	var before func(int)
	if orbit {
		o := host.NewOrbit()
		before = func(i int) {
			w, h := m.Surface().Size()
			o.Drive(m.Loop, i, w, h)
		}
	}
	frames := m.Run(ctx, n, before)
	slog.Info("headless run finished", "frames", frames, "tick", g.Tick())
	return nil
}

// portAddr follows PORT when it is set.
func portAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ""
}

// newLogger builds the JSON logger. The terminal backend owns the screen,
// so without a log file its logs are discarded.
func newLogger(backend, path, level string) (*slog.Logger, func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("parsing log level: %w", err)
	}
	hopts := &slog.HandlerOptions{Level: lvl}

	var w io.Writer = os.Stdout
	closeFn := func() {}
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case backend == "term":
		w = io.Discard
	}
	return slog.New(slog.NewJSONHandler(w, hopts)), closeFn, nil
}
