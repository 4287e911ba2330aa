package canopy

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const configTag = "Config"

// MaxNumberLimit caps LeavesConfig.MaxNumber. The pool is preallocated from
// it, so it bounds memory use.
const MaxNumberLimit = 1000

// envPrefix prefixes every environment override, e.g. CANOPY_LEAVES_NUMBER.
const envPrefix = "CANOPY_"

// LeavesConfig tunes the falling leaves. Distances are in pixels and times
// in milliseconds.
type LeavesConfig struct {
	// Number is the target count of original (non-piece) leaves.
	Number int `yaml:"number" env:"NUMBER"`
	// MaxNumber bounds Number. The pool capacity is 1.2x MaxNumber so that
	// split pieces have room without unbounded growth.
	MaxNumber int `yaml:"maxNumber" env:"MAX_NUMBER"`
	// Width and Height are the initial logical area.
	Width  float64 `yaml:"width" env:"WIDTH"`
	Height float64 `yaml:"height" env:"HEIGHT"`
	// MinSize and MaxSize bound the rendered leaf edge length.
	MinSize float64 `yaml:"minSize" env:"MIN_SIZE"`
	MaxSize float64 `yaml:"maxSize" env:"MAX_SIZE"`
	// G is gravity in px/ms².
	G float64 `yaml:"gravity" env:"GRAVITY"`
	// MinSpeed and MaxSpeed bound each leaf's terminal fall speed in px/ms.
	MinSpeed float64 `yaml:"minSpeed" env:"MIN_SPEED"`
	MaxSpeed float64 `yaml:"maxSpeed" env:"MAX_SPEED"`
	// MinDropRate is the longest wait between automatic drops.
	MinDropRate float64 `yaml:"minDropRate" env:"MIN_DROP_RATE"`
	// DropInterval is the period scale of the drop pacing sinusoid.
	DropInterval float64 `yaml:"dropInterval" env:"DROP_INTERVAL"`
	// Multiply is the maximum number of pieces a split spawns (at least 2).
	Multiply int `yaml:"multiply" env:"MULTIPLY"`
	// AutoFall drops idle leaves on the pacing schedule.
	AutoFall bool `yaml:"autoFall" env:"AUTO_FALL"`
}

// DefaultLeavesConfig returns the stock leaves tuning.
func DefaultLeavesConfig() LeavesConfig {
	return LeavesConfig{
		Number:       50,
		MaxNumber:    100,
		Width:        500,
		Height:       500,
		MinSize:      90,
		MaxSize:      150,
		G:            0.0001,
		MinSpeed:     0.1,
		MaxSpeed:     0.3,
		MinDropRate:  2000,
		DropInterval: 5000,
		Multiply:     3,
		AutoFall:     true,
	}
}

// Normalize clamps out-of-range values in place. Every adjustment is logged;
// none is an error.
func (c *LeavesConfig) Normalize() {
	def := DefaultLeavesConfig()
	if c.MaxNumber <= 0 {
		logf(configTag, "maxNumber %d invalid, using %d", c.MaxNumber, def.MaxNumber)
		c.MaxNumber = def.MaxNumber
	}
	if c.MaxNumber > MaxNumberLimit {
		logf(configTag, "maxNumber %d above %d, clamped", c.MaxNumber, MaxNumberLimit)
		c.MaxNumber = MaxNumberLimit
	}
	if c.Number < 0 {
		logf(configTag, "number %d below 0, clamped", c.Number)
		c.Number = 0
	}
	if c.Number > c.MaxNumber {
		logf(configTag, "number %d above maxNumber %d, clamped", c.Number, c.MaxNumber)
		c.Number = c.MaxNumber
	}
	if c.MinSize > c.MaxSize {
		c.MinSize, c.MaxSize = c.MaxSize, c.MinSize
	}
	if c.MinSpeed > c.MaxSpeed {
		c.MinSpeed, c.MaxSpeed = c.MaxSpeed, c.MinSpeed
	}
	if c.DropInterval <= 0 {
		logf(configTag, "dropInterval %v invalid, using %v", c.DropInterval, def.DropInterval)
		c.DropInterval = def.DropInterval
	}
	if c.MinDropRate < 0 {
		c.MinDropRate = 0
	}
	if c.Width < 0 {
		c.Width = 0
	}
	if c.Height < 0 {
		c.Height = 0
	}
}

// WindowConfig controls the host window created by Run.
type WindowConfig struct {
	Title  string `yaml:"title" env:"TITLE"`
	Width  int    `yaml:"width" env:"WIDTH"`
	Height int    `yaml:"height" env:"HEIGHT"`
	// TPS caps the frame rate. 0 keeps Ebitengine's default.
	TPS int `yaml:"tps" env:"TPS"`
	// Transparent clears to a transparent screen so the layer can sit over
	// the desktop.
	Transparent bool `yaml:"transparent" env:"TRANSPARENT"`
	Undecorated bool `yaml:"undecorated" env:"UNDECORATED"`
	Floating    bool `yaml:"floating" env:"FLOATING"`
	// MousePassthrough lets clicks through to the windows below.
	MousePassthrough bool `yaml:"mousePassthrough" env:"MOUSE_PASSTHROUGH"`
	ShowFPS          bool `yaml:"showFPS" env:"SHOW_FPS"`
}

// Config is the complete canopy configuration.
type Config struct {
	Window WindowConfig `yaml:"window" envPrefix:"WINDOW_"`
	Leaves LeavesConfig `yaml:"leaves" envPrefix:"LEAVES_"`
	Debug  bool         `yaml:"debug" env:"DEBUG"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:  "canopy",
			Width:  800,
			Height: 600,
		},
		Leaves: DefaultLeavesConfig(),
	}
}

// LoadConfig parses YAML on top of DefaultConfig. Keys absent from data keep
// their default values.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config: %w", err)
	}
	cfg.Leaves.Normalize()
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("read config %s: %w", path, err)
	}
	return LoadConfig(data)
}

// ApplyEnv overrides cfg from CANOPY_* environment variables, e.g.
// CANOPY_LEAVES_NUMBER=80 or CANOPY_WINDOW_TRANSPARENT=true. Unset variables
// leave fields untouched.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	cfg.Leaves.Normalize()
	return nil
}
