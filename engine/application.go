package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type WindowConfig struct {
	X         int  `toml:"x" yaml:"x"`
	Y         int  `toml:"y" yaml:"y"`
	Width     int  `toml:"width" yaml:"width"`
	Height    int  `toml:"height" yaml:"height"`
	Resizable bool `toml:"resizable" yaml:"resizable"`
	VSync     bool `toml:"vsync" yaml:"vsync"`
	// Debug enables the Vulkan validation layer when it is installed.
	Debug bool `toml:"debug" yaml:"debug"`
}

type AudioConfig struct {
	SampleRate   int  `toml:"sample_rate" yaml:"sample_rate"`
	BufferFrames int  `toml:"buffer_frames" yaml:"buffer_frames"`
	LatencyMS    int  `toml:"latency_ms" yaml:"latency_ms"`
	Capture      bool `toml:"capture" yaml:"capture"`
	Playback     bool `toml:"playback" yaml:"playback"`
}

type ControllerConfig struct {
	Deadzone float32 `toml:"deadzone" yaml:"deadzone"`
}

type FilesConfig struct {
	// Root is the directory holding the application files. Relative paths
	// are resolved against the user configuration directory.
	Root    string `toml:"root" yaml:"root"`
	Backend string `toml:"backend" yaml:"backend"`
	Watch   bool   `toml:"watch" yaml:"watch"`
	Workers int    `toml:"workers" yaml:"workers"`
}

type ApplicationConfig struct {
	// Name is the application title, also used for the window title.
	Name      string `toml:"name" yaml:"name"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
	// FrameRate caps the number of ticks per second. Zero runs unthrottled.
	FrameRate       int `toml:"frame_rate" yaml:"frame_rate"`
	ServiceBudgetMS int `toml:"service_budget_ms" yaml:"service_budget_ms"`
	// Headless replaces the window, the audio device and the controller
	// poller with backends that need no hardware.
	Headless bool `toml:"headless" yaml:"headless"`

	Window     WindowConfig     `toml:"window" yaml:"window"`
	Audio      AudioConfig      `toml:"audio" yaml:"audio"`
	Controller ControllerConfig `toml:"controller" yaml:"controller"`
	Files      FilesConfig      `toml:"files" yaml:"files"`
}

func DefaultApplicationConfig(name string) ApplicationConfig {
	return ApplicationConfig{
		Name:            name,
		LogLevel:        "info",
		LogFormat:       "text",
		FrameRate:       60,
		ServiceBudgetMS: 4,
		Window: WindowConfig{
			X:         100,
			Y:         100,
			Width:     1280,
			Height:    720,
			Resizable: true,
			VSync:     true,
		},
		Audio: AudioConfig{
			SampleRate:   48000,
			BufferFrames: 512,
			LatencyMS:    100,
			Capture:      true,
			Playback:     true,
		},
		Controller: ControllerConfig{
			Deadzone: 0.15,
		},
		Files: FilesConfig{
			Root:    packageDir(name),
			Backend: "dir",
			Workers: 2,
		},
	}
}

func packageDir(name string) string {
	dir := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	if dir == "" {
		dir = "cala"
	}
	return dir
}

// LoadConfig reads a TOML or YAML file, picked by extension, over the
// defaults in cfg.
func LoadConfig(path string, cfg *ApplicationConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.Validate()
}

func (c *ApplicationConfig) Validate() error {
	switch {
	case c.FrameRate < 0:
		return fmt.Errorf("frame_rate must not be negative, got %d", c.FrameRate)
	case c.ServiceBudgetMS < 0:
		return fmt.Errorf("service_budget_ms must not be negative, got %d", c.ServiceBudgetMS)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	case c.Audio.SampleRate < 0 || c.Audio.BufferFrames < 0 || c.Audio.LatencyMS < 0:
		return fmt.Errorf("audio settings must not be negative")
	case c.Controller.Deadzone < 0 || c.Controller.Deadzone >= 1:
		return fmt.Errorf("controller deadzone must be in [0, 1), got %v", c.Controller.Deadzone)
	}
	return nil
}

// filesRoot resolves the files root against the user configuration directory.
func (c *ApplicationConfig) filesRoot() string {
	if filepath.IsAbs(c.Files.Root) {
		return c.Files.Root
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, c.Files.Root)
}
