// Package config loads the settings of flightsim from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sarchlab/flightsim/logging"
	"github.com/sarchlab/flightsim/sim"
)

// DefaultEnvFile is loaded when no file is named. It is optional.
const DefaultEnvFile = ".env"

// Environment variables that hold the settings.
const (
	EnvTickInterval   = "FLIGHTSIM_TICK_INTERVAL"
	EnvMinutesPerTick = "FLIGHTSIM_MINUTES_PER_TICK"
	EnvSpacing        = "FLIGHTSIM_SPACING_MINUTES"
	EnvMonitorPort    = "FLIGHTSIM_MONITOR_PORT"
	EnvLogLevel       = "FLIGHTSIM_LOG_LEVEL"
	EnvLogDir         = "FLIGHTSIM_LOG_DIR"
	EnvRecord         = "FLIGHTSIM_RECORD"
	EnvIdleKill       = "FLIGHTSIM_IDLE_KILL"
	EnvIdleReminder   = "FLIGHTSIM_IDLE_REMINDER"
	EnvGlobalIDs      = "FLIGHTSIM_GLOBAL_IDS"
)

// Config holds the settings of a flightsim run.
type Config struct {
	TickInterval   time.Duration
	MinutesPerTick int
	Spacing        int
	MonitorPort    int
	LogLevel       string
	LogDir         string
	RecordPath     string

	// A zero IdleKill disables the idle watchdog.
	IdleKill     time.Duration
	IdleReminder time.Duration

	// GlobalIDs gives flights xid identities instead of F1, F2, ... so that
	// several runs can record into one database without collisions.
	GlobalIDs bool
}

// Default returns the reference settings.
func Default() Config {
	return Config{
		TickInterval:   sim.DefaultTickInterval,
		MinutesPerTick: sim.DefaultMinutesPerTick,
		Spacing:        sim.DefaultSpacingThreshold,
		LogLevel:       "info",
		LogDir:         "flightsim-logs",
		IdleKill:       60 * time.Second,
		IdleReminder:   55 * time.Second,
	}
}

// Load reads the given .env files into the environment and builds the
// configuration from it. Variables that are already set are not overridden.
// Without files, DefaultEnvFile is loaded if it exists.
func Load(files ...string) (Config, error) {
	if err := loadEnvFiles(files); err != nil {
		return Config{}, err
	}

	c := Default()

	if err := c.readEnv(); err != nil {
		return Config{}, err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func loadEnvFiles(files []string) error {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return fmt.Errorf("loading env files: %w", err)
		}

		return nil
	}

	err := godotenv.Load(DefaultEnvFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", DefaultEnvFile, err)
	}

	return nil
}

func (c *Config) readEnv() error {
	parsers := []struct {
		name  string
		parse func(string) error
	}{
		{EnvTickInterval, durationInto(&c.TickInterval)},
		{EnvMinutesPerTick, intInto(&c.MinutesPerTick)},
		{EnvSpacing, intInto(&c.Spacing)},
		{EnvMonitorPort, intInto(&c.MonitorPort)},
		{EnvLogLevel, stringInto(&c.LogLevel)},
		{EnvLogDir, stringInto(&c.LogDir)},
		{EnvRecord, stringInto(&c.RecordPath)},
		{EnvIdleKill, durationInto(&c.IdleKill)},
		{EnvIdleReminder, durationInto(&c.IdleReminder)},
		{EnvGlobalIDs, boolInto(&c.GlobalIDs)},
	}

	for _, p := range parsers {
		value, found := os.LookupEnv(p.name)
		if !found || value == "" {
			continue
		}

		if err := p.parse(value); err != nil {
			return fmt.Errorf("%s=%q: %w", p.name, value, err)
		}
	}

	return nil
}

func durationInto(d *time.Duration) func(string) error {
	return func(s string) (err error) {
		*d, err = time.ParseDuration(s)
		return err
	}
}

func intInto(n *int) func(string) error {
	return func(s string) (err error) {
		*n, err = strconv.Atoi(s)
		return err
	}
}

func boolInto(b *bool) func(string) error {
	return func(s string) (err error) {
		*b, err = strconv.ParseBool(s)
		return err
	}
}

func stringInto(v *string) func(string) error {
	return func(s string) error {
		*v = s
		return nil
	}
}

// Validate checks that the settings can drive a simulation.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v",
			c.TickInterval)
	}

	if c.MinutesPerTick <= 0 {
		return fmt.Errorf("minutes per tick must be positive, got %d",
			c.MinutesPerTick)
	}

	if c.Spacing <= 0 {
		return fmt.Errorf("spacing must be positive, got %d", c.Spacing)
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		return fmt.Errorf("invalid monitor port %d", c.MonitorPort)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.IdleKill > 0 && c.IdleReminder >= c.IdleKill {
		return fmt.Errorf("idle reminder (%v) must come before the kill (%v)",
			c.IdleReminder, c.IdleKill)
	}

	return nil
}
