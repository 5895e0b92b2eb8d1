package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"chronolink/internal/device"
	"chronolink/internal/serialport"
	"chronolink/internal/transport"
)

const (
	DefaultTimeout = 200 * time.Millisecond
	DefaultPPSChip = "gpiochip0"
)

type Config struct {
	Log   LogConfig    `yaml:"log" toml:"log"`
	Ports []PortConfig `yaml:"ports" toml:"ports"`
	PPS   PPSConfig    `yaml:"pps" toml:"pps"`
}

type LogConfig struct {
	Level   string `yaml:"level" toml:"level"`
	NoColor bool   `yaml:"no_color" toml:"no_color"`
}

// PortConfig is one instrument on one serial device. Baud 0 means the
// profile's default rate.
type PortConfig struct {
	Name    string        `yaml:"name" toml:"name"`
	Driver  string        `yaml:"driver" toml:"driver"`
	Device  string        `yaml:"device" toml:"device"`
	Profile string        `yaml:"profile" toml:"profile"`
	Baud    int           `yaml:"baud" toml:"baud"`
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
}

type PPSConfig struct {
	Enable bool   `yaml:"enable" toml:"enable"`
	Chip   string `yaml:"chip" toml:"chip"`
	Line   int    `yaml:"line" toml:"line"`
	// Port names the instrument the pulse comes from. Informational.
	Port string `yaml:"port" toml:"port"`
}

// Load reads a YAML or TOML file, chosen by extension (.toml is TOML,
// anything else YAML), then applies defaults and validates.
func Load(path string) (Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) normalize() error {
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if len(cfg.Ports) == 0 {
		return fmt.Errorf("ports must contain at least one entry")
	}

	seen := make(map[string]int, len(cfg.Ports))
	for i := range cfg.Ports {
		p := &cfg.Ports[i]
		key := fmt.Sprintf("ports[%d]", i)

		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			p.Name = fmt.Sprintf("port%d", i)
		}
		if j, dup := seen[p.Name]; dup {
			return fmt.Errorf("%s.name %q duplicates ports[%d].name", key, p.Name, j)
		}
		seen[p.Name] = i

		p.Device = strings.TrimSpace(p.Device)
		if p.Device == "" {
			return fmt.Errorf("%s.device is required", key)
		}

		p.Profile = strings.ToLower(strings.TrimSpace(p.Profile))
		if p.Profile == "" {
			return fmt.Errorf("%s.profile is required", key)
		}
		def, ok := device.DefaultBaud(p.Profile)
		if !ok {
			return fmt.Errorf("%s.profile must be one of %s", key, strings.Join(device.Kinds(), ", "))
		}

		p.Driver = strings.ToLower(strings.TrimSpace(p.Driver))
		if p.Driver == "" {
			p.Driver = serialport.DefaultDriver()
		}
		if !slices.Contains(serialport.Drivers(), p.Driver) {
			return fmt.Errorf("%s.driver must be one of %s", key, strings.Join(serialport.Drivers(), ", "))
		}

		if p.Baud == 0 {
			p.Baud = def
		}
		if !transport.ValidBaud(p.Baud) {
			return fmt.Errorf("%s.baud %d is not a supported rate", key, p.Baud)
		}

		if p.Timeout < 0 {
			return fmt.Errorf("%s.timeout must be >= 0", key)
		}
		if p.Timeout == 0 {
			p.Timeout = DefaultTimeout
		}
		if p.Timeout%time.Millisecond != 0 {
			return fmt.Errorf("%s.timeout must be a whole number of milliseconds", key)
		}
	}

	if cfg.PPS.Enable {
		cfg.PPS.Chip = strings.TrimSpace(cfg.PPS.Chip)
		if cfg.PPS.Chip == "" {
			cfg.PPS.Chip = DefaultPPSChip
		}
		if cfg.PPS.Line < 0 {
			return fmt.Errorf("pps.line must be >= 0")
		}
		if cfg.PPS.Port != "" {
			if _, ok := seen[cfg.PPS.Port]; !ok {
				return fmt.Errorf("pps.port %q does not name a configured port", cfg.PPS.Port)
			}
		}
	}
	return nil
}

// Port returns the port config named name.
func (cfg Config) Port(name string) (PortConfig, bool) {
	for _, p := range cfg.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return PortConfig{}, false
}
