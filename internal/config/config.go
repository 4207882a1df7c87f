// Package config loads PlayBoard settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"PlayBoard/internal/board"
	"PlayBoard/internal/state"

	"gopkg.in/yaml.v3"
)

const (
	appDir     = "playboard"
	configFile = "config.yaml"
)

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Drawing struct {
	Snap            bool          `yaml:"snap"`
	AvoidCollisions bool          `yaml:"avoid_collisions"`
	CollisionRadius float64       `yaml:"collision_radius"`
	DetourRadius    float64       `yaml:"detour_radius"`
	DetourAttempts  int           `yaml:"detour_attempts"`
	DragThreshold   float64       `yaml:"drag_threshold"`
	ResizeDebounce  time.Duration `yaml:"resize_debounce"`
	Shape           state.Shape   `yaml:"shape"`
	Color           string        `yaml:"color"`
}

// PrintLayout is the grid of plays per PDF page.
type PrintLayout struct {
	Columns int `yaml:"columns"`
	Rows    int `yaml:"rows"`
}

type Config struct {
	Port    int         `yaml:"port"`
	DataDir string      `yaml:"data_dir"`
	Redis   Redis       `yaml:"redis"`
	Drawing Drawing     `yaml:"drawing"`
	Print   PrintLayout `yaml:"print"`

	path string
}

func Default() *Config {
	settings := board.DefaultSettings()
	style := board.DefaultStyle()
	return &Config{
		Port:    8080,
		DataDir: filepath.Join(baseDir(), "plays"),
		Redis:   Redis{},
		Drawing: Drawing{
			Snap:            settings.Snap,
			AvoidCollisions: settings.AvoidCollisions,
			CollisionRadius: settings.CollisionRadius,
			DetourRadius:    settings.DetourRadius,
			DetourAttempts:  settings.DetourAttempts,
			DragThreshold:   settings.DragThreshold,
			ResizeDebounce:  150 * time.Millisecond,
			Shape:           style.Shape,
			Color:           style.Color,
		},
		Print: PrintLayout{Columns: 2, Rows: 3},
		path:  DefaultPath(),
	}
}

func baseDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, appDir)
}

// DefaultPath is where the config file lives unless told otherwise.
func DefaultPath() string {
	return filepath.Join(baseDir(), configFile)
}

// Load reads the config at path (DefaultPath when empty) and applies
// environment overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("[CONFIG] No config at %s, using defaults", path)
	case err != nil:
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return Default(), fmt.Errorf("config: unmarshal %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if port := os.Getenv("PLAYBOARD_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("config: PLAYBOARD_PORT: %w", err)
		}
		c.Port = n
	} else {
		log.Printf("[CONFIG] PLAYBOARD_PORT not set, defaulting to %d", c.Port)
	}

	if addr := os.Getenv("PLAYBOARD_REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if dir := os.Getenv("PLAYBOARD_DATA_DIR"); dir != "" {
		c.DataDir = dir
	} else {
		log.Printf("[CONFIG] PLAYBOARD_DATA_DIR not set, defaulting to %s", c.DataDir)
	}
	return nil
}

func (c *Config) normalize() {
	def := Default()
	if c.Drawing.CollisionRadius <= 0 {
		c.Drawing.CollisionRadius = def.Drawing.CollisionRadius
	}
	if c.Drawing.DetourRadius <= 0 {
		c.Drawing.DetourRadius = def.Drawing.DetourRadius
	}
	if c.Drawing.DetourAttempts <= 0 {
		c.Drawing.DetourAttempts = def.Drawing.DetourAttempts
	}
	if c.Drawing.DragThreshold < 0 {
		c.Drawing.DragThreshold = def.Drawing.DragThreshold
	}
	if !c.Drawing.Shape.Valid() {
		c.Drawing.Shape = def.Drawing.Shape
	}
	if c.Drawing.Color == "" {
		c.Drawing.Color = def.Drawing.Color
	}
	if c.Print.Columns <= 0 || c.Print.Rows <= 0 {
		c.Print = def.Print
	}
}

// Path returns the file the config was loaded from and will be saved to.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config back to its file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", c.path, err)
	}
	return nil
}

// Settings converts the drawing section into board settings.
func (c *Config) Settings() board.Settings {
	s := board.DefaultSettings()
	s.Snap = c.Drawing.Snap
	s.AvoidCollisions = c.Drawing.AvoidCollisions
	s.CollisionRadius = c.Drawing.CollisionRadius
	s.DetourRadius = c.Drawing.DetourRadius
	s.DetourAttempts = c.Drawing.DetourAttempts
	s.DragThreshold = c.Drawing.DragThreshold
	return s
}

// Style returns the initial style for new elements.
func (c *Config) Style() board.Style {
	return board.Style{Shape: c.Drawing.Shape, Color: c.Drawing.Color}
}

// Addr is the listen address of the live-share server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
