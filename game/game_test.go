package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/telemetry"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestHeadlessRunWritesOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	var windows []telemetry.WindowStats
	g, err := NewGameWithOptions(config.Default(), Options{
		Seed:          3,
		OutputDir:     dir,
		MaxTicks:      250,
		Logger:        quiet,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatal(err)
	}

	m := host.NewManual(800, 600)
	if err := g.Mount(m); err != nil {
		t.Fatal(err)
	}
	o := host.NewOrbit()
	if n := m.Run(t.Context(), int(g.MaxTicks()), func(i int) { o.Drive(m.Loop, i, 800, 600) }); n != 250 {
		t.Fatalf("ran %d frames, want 250", n)
	}
	if !g.Done() || g.Tick() != 250 {
		t.Errorf("done = %v at tick %d, want done at 250", g.Done(), g.Tick())
	}

	// Two full windows of 120 frames, then the partial one on Unload.
	if len(windows) != 2 {
		t.Fatalf("windows before unload = %d, want 2", len(windows))
	}
	g.Unload()
	if len(windows) != 3 {
		t.Fatalf("windows after unload = %d, want 3", len(windows))
	}
	if windows[0].Frames != 120 || windows[2].Frames != 10 {
		t.Errorf("window frames = %d, %d, %d", windows[0].Frames, windows[1].Frames, windows[2].Frames)
	}
	if windows[2].WindowEndTick != 250 {
		t.Errorf("last window ends at %d, want 250", windows[2].WindowEndTick)
	}
	for i, w := range windows {
		if w.Particles != 60 {
			t.Errorf("window %d particles = %d, want 60", i, w.Particles)
		}
	}
	if g.Simulator().Mounted() {
		t.Error("field still mounted after Unload")
	}

	for _, name := range []string{"telemetry.csv", "perf.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 4 {
			t.Errorf("%s has %d lines, want header plus 3 rows", name, len(lines))
		}
		if !strings.HasPrefix(lines[0], "window_end") {
			t.Errorf("%s header = %q", name, lines[0])
		}
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot does not load: %v", err)
	}

	// A second Unload is harmless.
	g.Unload()
}

func TestMountWithoutSurface(t *testing.T) {
	g, err := NewGameWithOptions(config.Default(), Options{Logger: quiet})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Unload()

	m := host.NewManual(800, 600, host.WithoutSurface())
	if err := g.Mount(m); !errors.Is(err, field.ErrNoSurface) {
		t.Fatalf("Mount = %v, want ErrNoSurface", err)
	}
	if m.PendingFrames() != 0 || m.Listeners() != 0 {
		t.Error("failed mount left callbacks behind")
	}
	if g.Done() {
		t.Error("unlimited session reports done")
	}
}

func TestCursorOption(t *testing.T) {
	tests := []struct {
		name   string
		cursor bool
		want   int
	}{
		{"config default", false, 0},
		{"forced on", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			g, err := NewGameWithOptions(cfg, Options{Cursor: tt.cursor, Logger: quiet})
			if err != nil {
				t.Fatal(err)
			}
			defer g.Unload()

			m := host.NewManual(800, 600)
			if err := g.Mount(m); err != nil {
				t.Fatal(err)
			}
			m.Move(400, 300)
			m.RunFrame()
			if got := m.Recorder().Count(renderer.OpStrokeCircle); got != tt.want {
				t.Errorf("cursor rings = %d, want %d", got, tt.want)
			}
			// The shared config is untouched.
			if cfg.Cursor.Enabled {
				t.Error("Cursor option modified the caller's config")
			}
		})
	}
}

func TestBadOutputDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewGameWithOptions(config.Default(), Options{OutputDir: filepath.Join(file, "sub"), Logger: quiet}); err == nil {
		t.Error("NewGameWithOptions succeeded with an unusable output dir")
	}
}

func TestLogStatsUsesSessionLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil)).With("session", 7)
	g, err := NewGameWithOptions(config.Default(), Options{Seed: 1, LogStats: true, Logger: log})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Unload()

	m := host.NewManual(800, 600)
	if err := g.Mount(m); err != nil {
		t.Fatal(err)
	}
	m.Run(t.Context(), 120, nil)

	seen := map[string]bool{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec struct {
			Msg     string `json:"msg"`
			Session int    `json:"session"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		if rec.Msg != "stats" && rec.Msg != "perf" {
			continue
		}
		seen[rec.Msg] = true
		if rec.Session != 7 {
			t.Errorf("%s record session = %d, want 7", rec.Msg, rec.Session)
		}
	}
	for _, msg := range []string{"stats", "perf"} {
		if !seen[msg] {
			t.Errorf("no %q record logged", msg)
		}
	}
}
