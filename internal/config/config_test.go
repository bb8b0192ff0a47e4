package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWriteTemplateThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stationctl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("template must load back: %v", err)
	}
	if cfg.Device.Host != "pico_host_here" || cfg.Device.Port != 60438 {
		t.Fatalf("unexpected device defaults: %+v", cfg.Device)
	}
	if cfg.StationID != 0 {
		t.Fatalf("unexpected station id: %d", cfg.StationID)
	}
	if cfg.Database.DSN == "" {
		t.Fatal("template must carry a database dsn placeholder")
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stationctl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		StationID: 4,
		Device:    DeviceConfig{Host: "station.local", Port: 60438},
		Database:  DatabaseConfig{DSN: "postgres://u:p@localhost/db"},
	}
	if err := Validate(valid); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing host", func(c *Config) { c.Device.Host = " " }},
		{"port zero", func(c *Config) { c.Device.Port = 0 }},
		{"port too large", func(c *Config) { c.Device.Port = 70000 }},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }},
		{"bogus timezone", func(c *Config) { c.Timezone = "Nowhere/Special" }},
	}
	for _, tc := range cases {
		cfg := valid
		tc.mutate(&cfg)
		if err := Validate(cfg); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestZoneDefaults(t *testing.T) {
	for _, name := range []string{"", "Local", "  "} {
		cfg := Config{Timezone: name}
		loc, err := cfg.Zone()
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		if loc != time.Local {
			t.Fatalf("%q: expected the host zone, got %v", name, loc)
		}
	}
}

func TestDeviceAddr(t *testing.T) {
	cfg := Config{Device: DeviceConfig{Host: "station.local", Port: 60438}}
	if got := cfg.DeviceAddr(); got != "station.local:60438" {
		t.Fatalf("unexpected addr: %s", got)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stationctl.toml")
	body := `station_id = 9
timezone = "UTC"

[device]
host = "10.0.0.12"
port = 60438

[database]
dsn = "postgres://u:p@db:5432/measurements?sslmode=disable"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StationID != 9 || cfg.Device.Host != "10.0.0.12" || cfg.Timezone != "UTC" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	loc, err := cfg.Zone()
	if err != nil || loc != time.UTC {
		t.Fatalf("expected UTC zone, got %v (%v)", loc, err)
	}
}
