package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where stationctl looks for its config file.
const DefaultPath = "stationctl.toml"

// ErrNotFound reports a missing config file. The caller is expected to
// materialize a template and abort.
var ErrNotFound = errors.New("config: file not found")

type Config struct {
	StationID int32  `toml:"station_id"`
	Timezone  string `toml:"timezone"`

	Device   DeviceConfig   `toml:"device"`
	Database DatabaseConfig `toml:"database"`
}

type DeviceConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	DSN string `toml:"dsn"`
}

func Load(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Device.Host) == "" {
		return fmt.Errorf("config: device host is required")
	}
	if cfg.Device.Port < 1 || cfg.Device.Port > 65535 {
		return fmt.Errorf("config: device port %d out of range", cfg.Device.Port)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("config: database dsn is required")
	}
	if _, err := loadZone(cfg.Timezone); err != nil {
		return fmt.Errorf("config: invalid timezone %q: %w", cfg.Timezone, err)
	}
	return nil
}

// DeviceAddr is the dialable station address.
func (c Config) DeviceAddr() string {
	return net.JoinHostPort(c.Device.Host, strconv.Itoa(c.Device.Port))
}

// Zone resolves the configured timezone. Empty or "Local" means the host
// zone, which is the frame of reference the station's clock sync uses.
func (c Config) Zone() (*time.Location, error) {
	return loadZone(c.Timezone)
}

func loadZone(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(name)
	}
}
