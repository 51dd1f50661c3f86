package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "app.toml", `
name = "Pong"
frame_rate = 30
headless = true

[window]
width = 640
height = 480

[audio]
latency_ms = 40

[files]
backend = "sqlite"
`},
		{"yaml", "app.yaml", `
name: Pong
frame_rate: 30
headless: true
window:
  width: 640
  height: 480
audio:
  latency_ms: 40
files:
  backend: sqlite
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultApplicationConfig("default")
			if err := LoadConfig(writeFile(t, tt.file, tt.content), &cfg); err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Name != "Pong" || cfg.FrameRate != 30 || !cfg.Headless {
				t.Errorf("top level = %q %d %v", cfg.Name, cfg.FrameRate, cfg.Headless)
			}
			if cfg.Window.Width != 640 || cfg.Window.Height != 480 {
				t.Errorf("window = %dx%d, want 640x480", cfg.Window.Width, cfg.Window.Height)
			}
			if cfg.Audio.LatencyMS != 40 || cfg.Audio.SampleRate != 48000 {
				t.Errorf("audio = %+v, want latency 40 and default rate", cfg.Audio)
			}
			if cfg.Files.Backend != "sqlite" || cfg.Files.Root != "default" {
				t.Errorf("files = %+v", cfg.Files)
			}
			if !cfg.Window.VSync {
				t.Error("unset vsync lost its default")
			}
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cfg := DefaultApplicationConfig("x")
	if err := LoadConfig(writeFile(t, "app.ini", "a=b"), &cfg); err == nil {
		t.Error("LoadConfig(ini) error = nil")
	}
	if err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), &cfg); err == nil {
		t.Error("LoadConfig(missing) error = nil")
	}
	if err := LoadConfig(writeFile(t, "bad.toml", "frame_rate = -3"), &cfg); err == nil {
		t.Error("LoadConfig(negative frame rate) error = nil")
	}
	cfg = DefaultApplicationConfig("x")
	if err := LoadConfig(writeFile(t, "bad.yaml", "controller:\n  deadzone: 1.5\n"), &cfg); err == nil {
		t.Error("LoadConfig(deadzone 1.5) error = nil")
	}
}

func TestFilesRoot(t *testing.T) {
	cfg := DefaultApplicationConfig("My Game")
	if cfg.Files.Root != "my-game" {
		t.Fatalf("Files.Root = %q, want my-game", cfg.Files.Root)
	}
	if root := cfg.filesRoot(); !filepath.IsAbs(root) || filepath.Base(root) != "my-game" {
		t.Errorf("filesRoot() = %q", root)
	}
	abs := t.TempDir()
	cfg.Files.Root = abs
	if got := cfg.filesRoot(); got != abs {
		t.Errorf("filesRoot() = %q, want %q", got, abs)
	}
}
